// Package jobs runs dataset processing detached from the HTTP requests
// that trigger it: a fixed pool of workers consumes a channel of tasks,
// and each task advances exactly one job through its lifecycle.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Task is one unit of detached work.
type Task func(ctx context.Context) error

// Pool is a fixed-size worker pool with a bounded queue. A full queue
// applies backpressure: Submit blocks until a worker frees space, so an
// accepted task is never dropped. Tasks submitted after Stop are
// rejected; Stop drains everything already queued before returning.
type Pool struct {
	tasks   chan Task
	workers int

	mu      sync.Mutex
	stopped bool
	quit    chan struct{}
	submits sync.WaitGroup
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers and a bounded
// queue sized at four tasks per worker.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		tasks:   make(chan Task, workers*4),
		workers: workers,
		quit:    make(chan struct{}),
	}
}

// Start launches the workers. ctx is passed to every task and, when
// cancelled, makes the workers exit without draining the queue — hand
// Start a context that outlives the shutdown signal and use Stop for an
// orderly drain.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-p.tasks:
					if !ok {
						return
					}
					if err := task(ctx); err != nil {
						slog.Error("background task failed", "worker", id, "error", err)
					}
				}
			}
		}(i)
	}
}

// Stop rejects new submissions, unblocks submitters waiting on a full
// queue, lets the workers finish every queued task, and blocks until
// they have all exited.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.quit)
	p.mu.Unlock()

	// Blocked submitters must observe quit before the task channel
	// closes under them.
	p.submits.Wait()
	close(p.tasks)
	p.wg.Wait()
}

// Submit queues a task, blocking while the queue is full. It fails only
// when the pool is stopped, so an accepted task will run exactly once.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return errors.New("pool stopped")
	}
	p.submits.Add(1)
	p.mu.Unlock()
	defer p.submits.Done()

	select {
	case p.tasks <- task:
		return nil
	case <-p.quit:
		return errors.New("pool stopped")
	}
}
