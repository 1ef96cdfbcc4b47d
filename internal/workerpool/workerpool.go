// Package workerpool runs a batch of independent jobs with a bounded number
// of concurrent workers, for operations that fan out across whole archive
// files rather than within one (see the concurrency model this is grounded
// on: unpacking a directory of archives, or packing independent sections of
// one archive).
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Job is one unit of work; its index is the position it held in the slice
// passed to Run, so callers can correlate results back to inputs.
type Job func(ctx context.Context, index int) error

// Run executes jobs with at most runtime.NumCPU() running concurrently,
// returning the first error encountered (if any) after every started job has
// finished. It does not cancel ctx itself; callers that want early
// cancellation on first error should derive ctx from a context they cancel
// once Run returns.
func Run(ctx context.Context, jobs []Job) error {
	return RunLimit(ctx, jobs, runtime.NumCPU())
}

// RunLimit is Run with an explicit concurrency limit. A limit <= 0 is
// treated as 1.
func RunLimit(ctx context.Context, jobs []Job, limit int) error {
	if limit <= 0 {
		limit = 1
	}
	if len(jobs) == 0 {
		return nil
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, job := range jobs {
		select {
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			mu.Unlock()
			wg.Wait()
			return firstErr
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := job(ctx, i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i, job)
	}

	wg.Wait()
	return firstErr
}
