package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(2)
	p.Start()

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		err := p.Submit(Job{
			ID: "job",
			Handler: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	go func() {
		for ran.Load() < 5 {
			time.Sleep(5 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs run = %d, want 5", ran.Load())
	}

	p.StopWait(time.Second)
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.StopWait(time.Second)

	if err := p.Submit(Job{ID: "late", Handler: func(context.Context) error { return nil }}); err != ErrStopped {
		t.Errorf("Submit() after stop = %v, want ErrStopped", err)
	}
}

func TestStopWaitBoundedByGrace(t *testing.T) {
	p := NewPool(1)
	p.Start()

	started := make(chan struct{})
	err := p.Submit(Job{
		ID: "stuck",
		Handler: func(ctx context.Context) error {
			close(started)
			// Ignores cancellation, simulating a hung external call.
			time.Sleep(3 * time.Second)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-started

	start := time.Now()
	p.StopWait(100 * time.Millisecond)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("StopWait() blocked for %v despite grace of 100ms", elapsed)
	}
}

func TestSubmitRacingStopWait(t *testing.T) {
	// Submitters hammering the pool while it shuts down must only ever
	// see an error return, never a panic from the shutdown path.
	for i := 0; i < 50; i++ {
		p := NewPool(2)
		p.Start()

		var wg sync.WaitGroup
		start := make(chan struct{})
		for s := 0; s < 8; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for {
					err := p.Submit(Job{ID: "race", Handler: func(context.Context) error { return nil }})
					if err == ErrStopped {
						return
					}
				}
			}()
		}

		close(start)
		p.StopWait(time.Second)
		wg.Wait()
	}
}

func TestJobObservesCancellation(t *testing.T) {
	p := NewPool(1)
	p.Start()

	cancelled := make(chan struct{})
	started := make(chan struct{})
	p.Submit(Job{
		ID: "cooperative",
		Handler: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})
	<-started

	p.StopWait(time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("job never observed cancellation")
	}
}
