package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// JobFunc adapts a function to Job
type JobFunc func(ctx context.Context) Result

// Execute calls f
func (f JobFunc) Execute(ctx context.Context) Result { return f(ctx) }

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes all jobs and returns their results in submission order.
// Jobs not started before ctx is done get a cancelled result. A panicking
// job yields an error result instead of crashing the pool.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = execute(ctx, jobs[idx])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- next:
		}
	}
	close(indexes)
	wg.Wait()

	for ; next < len(jobs); next++ {
		results[next] = errResult{err: ctx.Err()}
	}
	return results
}

func execute(ctx context.Context, job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = errResult{err: fmt.Errorf("job panicked: %v", r)}
		}
	}()
	if result = job.Execute(ctx); result == nil {
		result = errResult{}
	}
	return result
}

type errResult struct {
	err error
}

func (r errResult) GetError() error { return r.err }
