// Package workers runs indexed jobs on a bounded goroutine pool.
package workers

import (
	"context"
	"runtime"
	"sync"
)

// Count resolves the effective pool size: requested <= 0 means one worker
// per CPU, and the pool never exceeds the number of jobs.
func Count(requested, jobs int) int {
	workers := requested
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}

// Run calls fn once for every index in [0, n). Jobs are handed out in index
// order; fn writes its result into a caller-owned slot so output order
// matches input order regardless of scheduling. Cancellation is observed
// between jobs only. Run returns ctx.Err() when jobs were skipped.
func Run(ctx context.Context, n, requested int, fn func(i int)) error {
	if n == 0 {
		return nil
	}
	workers := Count(requested, n)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return err
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}
