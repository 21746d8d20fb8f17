package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/distrib"
	"github.com/Alexgichamba/denoiser/internal/ledger"
	"github.com/Alexgichamba/denoiser/internal/logging"
	"github.com/Alexgichamba/denoiser/internal/model"
	"github.com/Alexgichamba/denoiser/internal/services"
)

// Summary reports what a run accomplished.
type Summary struct {
	RunID    string
	Total    int
	Enhanced int
	Failed   int
	Elapsed  time.Duration
}

// Scheduler drives a run: it shards the dataset across the process group,
// dispatches per-batch enhancement jobs through the configured strategy and
// joins them before returning. Outcomes land in the ledger when one is
// attached.
type Scheduler struct {
	cfg    *config.Config
	rt     distrib.Runtime
	logger *slog.Logger
	store  *ledger.Store
}

// NewScheduler builds a scheduler. rt defaults to the local runtime and
// logger to a no-op logger when nil; store may be nil to skip run recording.
func NewScheduler(cfg *config.Config, rt distrib.Runtime, logger *slog.Logger, store *ledger.Store) *Scheduler {
	if rt == nil {
		rt = distrib.Local()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{cfg: cfg, rt: rt, logger: logger, store: store}
}

// Run enhances every file in the set into outDir. An empty or nil set is a
// successful no-op. The first failing item aborts the run; output already
// written for earlier items is kept.
func (s *Scheduler) Run(ctx context.Context, m model.Model, set *audio.Set, outDir string) (Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := s.logger.With(logging.String(logging.FieldRunID, runID))

	started := time.Now()
	summary := Summary{RunID: runID}

	if set == nil || set.Len() == 0 {
		logger.Warn("no input files resolved, nothing to enhance")
		summary.Elapsed = time.Since(started)
		return summary, nil
	}
	summary.Total = set.Len()

	// Only the coordinator creates the output directory; the barrier
	// guarantees it exists for every rank before any write is attempted.
	if s.rt.Rank() == 0 {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return summary, services.Wrap(services.ErrIO, "scheduler", "create out dir", outDir, err)
		}
	}
	if err := s.rt.Barrier(ctx); err != nil {
		return summary, err
	}

	if err := s.checkCollisions(set, outDir); err != nil {
		return summary, err
	}

	if s.store != nil {
		if err := s.store.BeginRun(ctx, runID, m.Name(), s.cfg.Enhance.Device, set.Len()); err != nil {
			return summary, services.Wrap(services.ErrIO, "scheduler", "record run", runID, err)
		}
	}

	var enhanced, failed atomic.Int64
	dispatcher := NewDispatcher(s.cfg.Enhance.Device, s.cfg.Enhance.NumWorkers)
	opts := Options{Dry: s.cfg.Enhance.Dry, Streaming: s.cfg.Enhance.Streaming}

	logger.Info("dispatching",
		logging.String("model", m.Name()),
		logging.Int("files", set.Len()),
		logging.Int("workers", s.cfg.Enhance.NumWorkers),
		logging.String("device", s.cfg.Enhance.Device),
		logging.Bool("streaming", s.cfg.Enhance.Streaming))

	dispatchErr := s.dispatchBatches(ctx, dispatcher, m, set, outDir, runID, opts, &enhanced, &failed)

	logger.Debug("draining outstanding jobs")
	drainErr := dispatcher.Drain()

	summary.Enhanced = int(enhanced.Load())
	summary.Failed = int(failed.Load())
	summary.Elapsed = time.Since(started)

	runErr := dispatchErr
	if runErr == nil {
		runErr = drainErr
	}
	if s.store != nil {
		status := ledger.RunCompleted
		if runErr != nil {
			status = ledger.RunFailed
		}
		if err := s.store.FinishRun(ctx, runID, summary.Enhanced, summary.Failed, status); err != nil {
			logger.Error("finalize run record", logging.Error(err))
		}
	}
	if runErr != nil {
		return summary, runErr
	}

	logger.Info("run complete",
		logging.Int("enhanced", summary.Enhanced),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// dispatchBatches walks this rank's share of the dataset and submits one job
// per batch. Submission stops at the first dispatch failure.
func (s *Scheduler) dispatchBatches(
	ctx context.Context,
	dispatcher Dispatcher,
	m model.Model,
	set *audio.Set,
	outDir, runID string,
	opts Options,
	enhanced, failed *atomic.Int64,
) error {
	batches := distrib.Batches(s.rt, set.Len(), s.cfg.Enhance.BatchSize)
	inputRoot := s.cfg.InputRoot()

	for _, batch := range batches {
		indices := batch
		job := func(jobCtx context.Context) error {
			for _, idx := range indices {
				if err := s.enhanceOne(jobCtx, m, set, idx, outDir, inputRoot, opts, enhanced, failed, runID); err != nil {
					return err
				}
			}
			return nil
		}
		if err := dispatcher.Dispatch(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

// enhanceOne processes a single file end to end: decode, estimate, plan the
// output path and write. The outcome is recorded in the ledger either way.
func (s *Scheduler) enhanceOne(
	ctx context.Context,
	m model.Model,
	set *audio.Set,
	idx int,
	outDir, inputRoot string,
	opts Options,
	enhanced, failed *atomic.Int64,
	runID string,
) error {
	started := time.Now()
	source := set.Path(idx)
	logger := s.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldFile, source))

	output, err := s.processFile(m, set, idx, outDir, inputRoot, opts)
	record := ledger.FileRecord{
		SourcePath: source,
		OutputPath: output,
		Status:     ledger.FileEnhanced,
		Duration:   time.Since(started),
	}
	if err != nil {
		record.Status = ledger.FileFailed
		record.OutputPath = ""
		record.Error = err.Error()
		failed.Add(1)
	} else {
		enhanced.Add(1)
	}
	if s.store != nil {
		if recErr := s.store.RecordFile(ctx, runID, record); recErr != nil {
			logger.Error("record file outcome", logging.Error(recErr))
		}
	}
	if err != nil {
		logger.Error("enhance failed", logging.Error(err))
		return err
	}
	logger.Info("enhanced",
		logging.String("output", output),
		logging.Duration("elapsed", record.Duration))
	return nil
}

func (s *Scheduler) processFile(m model.Model, set *audio.Set, idx int, outDir, inputRoot string, opts Options) (string, error) {
	clip, source, err := set.At(idx)
	if err != nil {
		return "", err
	}
	estimate, err := Estimate(m, clip, opts)
	if err != nil {
		return "", err
	}
	output, err := PlanOutputPath(source, outDir, inputRoot)
	if err != nil {
		return "", err
	}
	if err := WriteWav(estimate, output); err != nil {
		return "", err
	}
	return output, nil
}

// checkCollisions rejects a run in which two inputs would plan the same
// output path. Without the check the last writer would win
// non-deterministically.
func (s *Scheduler) checkCollisions(set *audio.Set, outDir string) error {
	inputRoot := s.cfg.InputRoot()
	seen := make(map[string]string, set.Len())
	for i := 0; i < set.Len(); i++ {
		source := set.Path(i)
		planned, err := planPath(source, outDir, inputRoot)
		if err != nil {
			return err
		}
		if prior, dup := seen[planned]; dup {
			return services.Wrap(services.ErrConfiguration, "scheduler", "output collision",
				fmt.Sprintf("%s and %s both map to %s", prior, source, planned), nil)
		}
		seen[planned] = source
	}
	return nil
}
