package enhance

import (
	"context"
	"sync"

	"github.com/Alexgichamba/denoiser/internal/config"
)

// Job is one unit of enhancement work: estimate and write a batch of files.
type Job func(ctx context.Context) error

// Dispatcher decides how jobs execute. Dispatch may run the job inline or
// enqueue it; Drain joins everything still outstanding, in submission order,
// and returns the first failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
	Drain() error
}

// NewDispatcher selects the execution strategy once per run. CPU runs with
// more than one worker overlap jobs through a bounded pool; accelerator runs
// and single-worker runs stay inline, since an accelerator is one shared
// resource and fanning out would only add contention.
func NewDispatcher(device string, workers int) Dispatcher {
	if device == config.DeviceCPU && workers > 1 {
		return &poolDispatcher{sem: make(chan struct{}, workers)}
	}
	return syncDispatcher{}
}

// syncDispatcher runs each job before returning from Dispatch. A failing job
// stops the run immediately; nothing is ever outstanding at drain time.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(ctx context.Context, job Job) error { return job(ctx) }
func (syncDispatcher) Drain() error                                { return nil }

// poolDispatcher fans jobs out to at most cap(sem) concurrent goroutines.
// Each Dispatch registers a future; Drain collects them in submission order.
// Once any job has failed, further Dispatch calls refuse new work so the
// submission loop stops early.
type poolDispatcher struct {
	sem     chan struct{}
	futures []chan error

	mu       sync.Mutex
	firstErr error
}

func (p *poolDispatcher) Dispatch(ctx context.Context, job Job) error {
	if err := p.failure(); err != nil {
		return err
	}

	done := make(chan error, 1)
	p.futures = append(p.futures, done)
	go func() {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			p.record(ctx.Err())
			done <- ctx.Err()
			return
		}
		defer func() { <-p.sem }()

		err := job(ctx)
		if err != nil {
			p.record(err)
		}
		done <- err
	}()
	return nil
}

// Drain waits on every future in submission order and re-raises the first
// failure, abandoning the remainder of the drain.
func (p *poolDispatcher) Drain() error {
	for _, done := range p.futures {
		if err := <-done; err != nil {
			p.futures = nil
			return err
		}
	}
	p.futures = nil
	return nil
}

func (p *poolDispatcher) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.firstErr == nil {
		p.firstErr = err
	}
}

func (p *poolDispatcher) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstErr
}
