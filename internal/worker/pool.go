// Package worker provides a generic worker pool for concurrent task
// processing and a serial loop used as the owner context of reactive state.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work with an index for ordering.
type Job[T any] struct {
	Index int
	Data  T
}

// Result represents the outcome of processing a Job.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// ProcessFunc processes a job and returns a result.
type ProcessFunc[I, O any] func(ctx context.Context, job Job[I]) (O, error)

// ProgressFunc is called after each job completes.
type ProgressFunc func(completed, total int)

// Pool runs jobs on a fixed number of workers.
type Pool[I, O any] struct {
	workers    int
	process    ProcessFunc[I, O]
	onProgress ProgressFunc
}

// NewPool creates a new worker pool.
func NewPool[I, O any](workers int, process ProcessFunc[I, O]) *Pool[I, O] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[I, O]{workers: workers, process: process}
}

// SetProgressCallback sets a callback to be called after each job completes.
func (p *Pool[I, O]) SetProgressCallback(fn ProgressFunc) {
	p.onProgress = fn
}

// Run processes all jobs and returns their results in job order. Jobs not
// yet started when ctx is cancelled report ctx.Err().
func (p *Pool[I, O]) Run(ctx context.Context, jobs []Job[I]) []Result[O] {
	total := len(jobs)
	results := make([]Result[O], total)
	if total == 0 {
		return results
	}

	jobChan := make(chan Job[I])
	resultChan := make(chan Result[O], p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				var r Result[O]
				r.Index = job.Index
				if err := ctx.Err(); err != nil {
					r.Err = err
				} else {
					r.Value, r.Err = p.process(ctx, job)
				}
				resultChan <- r
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	for r := range resultChan {
		if r.Index >= 0 && r.Index < total {
			results[r.Index] = r
		}
		completed++
		if p.onProgress != nil {
			p.onProgress(completed, total)
		}
	}
	return results
}

// Process runs fn over items on up to workers goroutines and returns the
// values in item order, or the first error by item order.
func Process[I, O any](ctx context.Context, items []I, workers int, fn func(ctx context.Context, item I) (O, error), onProgress ProgressFunc) ([]O, error) {
	output, errs := ProcessWithErrors(ctx, items, workers, fn, onProgress)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

// ProcessWithErrors is like Process but keeps going on failure. errs[i] is
// the error for items[i], or nil.
func ProcessWithErrors[I, O any](ctx context.Context, items []I, workers int, fn func(ctx context.Context, item I) (O, error), onProgress ProgressFunc) ([]O, []error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make([]Job[I], len(items))
	for i, item := range items {
		jobs[i] = Job[I]{Index: i, Data: item}
	}

	pool := NewPool(workers, func(ctx context.Context, job Job[I]) (O, error) {
		return fn(ctx, job.Data)
	})
	pool.SetProgressCallback(onProgress)
	results := pool.Run(ctx, jobs)

	output := make([]O, len(results))
	errs := make([]error, len(results))
	for i, r := range results {
		output[i] = r.Value
		errs[i] = r.Err
	}
	return output, errs
}
