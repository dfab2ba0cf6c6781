// Package worker provides the bounded pool that runs per-host inspection
// jobs so several new devices in one sweep do not serialize behind each
// other.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"wifiwarden/internal/log"
)

// ErrStopped is returned by Submit after the pool has shut down.
var ErrStopped = errors.New("worker pool stopped")

// Job is a unit of work identified for logging.
type Job struct {
	ID      string
	Handler func(ctx context.Context) error
}

// Pool runs jobs on a fixed number of workers. Jobs observe the pool's
// context and are expected to abandon work once it is cancelled.
type Pool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a pool with the given number of workers.
func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Debug("Worker pool started", "workers", p.maxWorkers)
}

// Submit queues a job. It never blocks on a full queue; the job is
// dropped with a warning instead, since a missed inspection must not
// stall the sweep that requested it.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return ErrStopped
	default:
		log.Warn("Worker queue full, dropping job", "job_id", job.ID)
		return errors.New("worker queue full")
	}
}

// StopWait shuts the pool down: no new jobs are accepted, queued jobs
// are abandoned, and in-flight jobs get up to grace to observe the
// cancelled context and return. StopWait never blocks longer than grace.
// The jobs channel is never closed; a Submit racing the shutdown must
// not be able to send on a closed channel, and the workers exit on the
// cancelled context anyway.
func (p *Pool) StopWait(grace time.Duration) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		log.Warn("Worker pool drain exceeded grace period", "grace", grace)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			if p.ctx.Err() != nil {
				return
			}
			log.Debug("Worker executing job", "worker_id", id, "job_id", job.ID)
			if err := job.Handler(p.ctx); err != nil {
				log.Warn("Job failed", "job_id", job.ID, "error", err)
			}
		}
	}
}
