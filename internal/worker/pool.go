// Package worker provides a generic concurrent worker pool for fan-out/fan-in
// processing. Used by the check command to evaluate batches of commands
// across available CPUs.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool fans out work items to a fixed number of goroutine workers
// and collects results preserving the original input order.
type Pool[In, Out any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[In, Out any](concurrency int) *Pool[In, Out] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[In, Out]{concurrency: concurrency}
}

// Concurrency returns the configured worker count.
func (p *Pool[In, Out]) Concurrency() int {
	return p.concurrency
}

// Process distributes items across workers, applies fn to each, and returns
// results in the same order as the input slice. Errors from individual items
// are captured per-result rather than aborting the whole batch. Items not yet
// started when ctx is done get ctx.Err() as their error.
func (p *Pool[In, Out]) Process(ctx context.Context, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if len(items) == 0 {
		return nil
	}

	workers := min(p.concurrency, len(items))

	type job struct {
		index int
		item  In
	}

	jobs := make(chan job, len(items))
	results := make([]Result[Out], len(items))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.index] = Result[Out]{Index: j.index, Err: err}
					continue
				}
				val, err := fn(ctx, j.item)
				results[j.index] = Result[Out]{
					Index: j.index,
					Value: val,
					Err:   err,
				}
			}
		}()
	}

	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	wg.Wait()

	return results
}
