package distrib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Alexgichamba/denoiser/internal/services"
)

// barrierPoll is how often a waiting member re-checks for the others'
// sentinel files.
const barrierPoll = 50 * time.Millisecond

// fileRuntime coordinates processes sharing a filesystem. Each Barrier call
// has a generation number; a member arrives by creating
// barrier-<token>-<generation>.<rank> in the shared directory and leaves once
// a file exists for every rank. Generations keep successive barriers within a
// run from observing each other, and the token keeps a run from observing
// sentinels an earlier run left in the same directory.
type fileRuntime struct {
	rank       int
	world      int
	dir        string
	token      string
	generation int
}

// NewFileRuntime returns a runtime for member rank of a world-sized group
// rendezvousing under dir. token is the run's rendezvous id; every member
// must use the same value, and no two runs sharing dir may reuse one. It
// lands in sentinel filenames, so it must be filename-safe.
func NewFileRuntime(rank, world int, dir, token string) Runtime {
	return &fileRuntime{rank: rank, world: world, dir: dir, token: token}
}

func (r *fileRuntime) Rank() int      { return r.rank }
func (r *fileRuntime) WorldSize() int { return r.world }

func (r *fileRuntime) Barrier(ctx context.Context) error {
	r.generation++

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "distrib", "barrier", r.dir, err)
	}
	own := r.sentinelPath(r.rank)
	if err := os.WriteFile(own, nil, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "distrib", "barrier", own, err)
	}

	ticker := time.NewTicker(barrierPoll)
	defer ticker.Stop()
	for {
		if r.allArrived() {
			return nil
		}
		select {
		case <-ctx.Done():
			return services.Wrap(services.ErrIO, "distrib", "barrier",
				fmt.Sprintf("rank %d gave up waiting at generation %d", r.rank, r.generation), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *fileRuntime) allArrived() bool {
	for rank := 0; rank < r.world; rank++ {
		if _, err := os.Stat(r.sentinelPath(rank)); err != nil {
			return false
		}
	}
	return true
}

func (r *fileRuntime) sentinelPath(rank int) string {
	return filepath.Join(r.dir, fmt.Sprintf("barrier-%s-%d.%d", r.token, r.generation, rank))
}
