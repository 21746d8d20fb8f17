package distrib

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Alexgichamba/denoiser/internal/services"
)

// Environment variables configuring the process's place in a multi-process
// run. Absent or world size 1 means a plain local run. Multi-process runs
// additionally need a rendezvous id shared by every member: the barrier
// directory outlives a run, and the id is what keeps a new run from adopting
// sentinel files a previous run left behind.
const (
	EnvRank       = "DENOISER_RANK"
	EnvWorldSize  = "DENOISER_WORLD_SIZE"
	EnvRendezvous = "DENOISER_RENDEZVOUS_ID"
)

// Runtime describes this process's position in a (possibly single-member)
// process group and lets members rendezvous.
type Runtime interface {
	Rank() int
	WorldSize() int
	Barrier(ctx context.Context) error
}

type localRuntime struct{}

func (localRuntime) Rank() int                     { return 0 }
func (localRuntime) WorldSize() int                { return 1 }
func (localRuntime) Barrier(context.Context) error { return nil }

// Local returns the single-process runtime: rank 0, world size 1, barriers
// return immediately.
func Local() Runtime {
	return localRuntime{}
}

// FromEnv builds a runtime from DENOISER_RANK, DENOISER_WORLD_SIZE and
// DENOISER_RENDEZVOUS_ID. With no world size set, or a world size of 1, it
// returns the local runtime. Multi-process runs coordinate through sentinel
// files under dir, which must be on a filesystem shared by every member, and
// the launcher must hand every member the same fresh rendezvous id.
func FromEnv(dir string) (Runtime, error) {
	worldRaw := os.Getenv(EnvWorldSize)
	if worldRaw == "" {
		return Local(), nil
	}
	world, err := strconv.Atoi(worldRaw)
	if err != nil || world < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "distrib", "env",
			fmt.Sprintf("invalid %s %q", EnvWorldSize, worldRaw), nil)
	}
	if world == 1 {
		return Local(), nil
	}

	rankRaw := os.Getenv(EnvRank)
	rank, err := strconv.Atoi(rankRaw)
	if err != nil || rank < 0 || rank >= world {
		return nil, services.Wrap(services.ErrConfiguration, "distrib", "env",
			fmt.Sprintf("invalid %s %q for world size %d", EnvRank, rankRaw, world), nil)
	}

	token := strings.TrimSpace(os.Getenv(EnvRendezvous))
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "distrib", "env",
			fmt.Sprintf("%s must carry an id shared by all %d members", EnvRendezvous, world), nil)
	}
	return NewFileRuntime(rank, world, dir, token), nil
}
