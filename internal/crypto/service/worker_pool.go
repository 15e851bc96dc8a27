package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds how many CPU-bound crypto jobs run at once across the
// whole process. Request handlers, the sweeper and imports share one pool so a
// burst of migrations cannot monopolise every core.
type WorkerPool struct {
	size int64
	sem  *semaphore.Weighted
}

// NewWorkerPool creates a pool running at most size jobs concurrently.
// A non-positive size uses runtime.NumCPU().
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &WorkerPool{
		size: int64(size),
		sem:  semaphore.NewWeighted(int64(size)),
	}
}

// Size returns the maximum number of concurrent jobs.
func (p *WorkerPool) Size() int {
	return int(p.size)
}

// Do waits for a free slot and runs fn on a pool goroutine, returning its error.
// ctx only bounds the wait for a slot: once fn starts it runs to completion.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn()
	}()
	return <-done
}

// Map runs fn over items on the pool and returns the results in input order.
// The first failure cancels jobs that have not started yet and is returned.
func Map[T, R any](ctx context.Context, pool *WorkerPool, items []T, fn func(T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())

	for i, item := range items {
		g.Go(func() error {
			return pool.Do(gctx, func() error {
				r, err := fn(item)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
