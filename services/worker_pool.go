package services

import (
	"context"
	"errors"
	"sync"

	"patternleader/observability"
)

// ErrPoolStopped is returned by Submit after the pool has shut down
var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerPool bounds how many collection jobs run concurrently. Providers
// tolerate only a couple of parallel requests per host before rate limiting,
// so batch work is funneled through a small fixed set of workers.
type WorkerPool struct {
	workers int
	jobs    chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkerPool creates a pool with the given number of workers and starts them
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}

	p := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers*2),
		done:    make(chan struct{}),
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit queues a job, blocking until a worker frees up or the context or
// pool is done.
func (p *WorkerPool) Submit(ctx context.Context, job func()) error {
	select {
	case <-p.done:
		return ErrPoolStopped
	default:
	}

	select {
	case <-p.done:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Stop shuts the pool down and waits for in-flight jobs to finish
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	observability.Debug("worker started", "worker_id", id)
	defer observability.Debug("worker stopped", "worker_id", id)

	for {
		select {
		case <-p.done:
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		}
	}
}
