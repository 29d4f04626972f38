package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent transfers
const DefaultConcurrency = 4

// BulkResult is the outcome of one item in a multi-file command.
type BulkResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
	err     error
}

// runBulkOperation runs operation for each key with bounded parallelism.
// Results keep the order of keys. Individual failures do not stop the rest;
// cancelling ctx does.
func runBulkOperation[T any](
	ctx context.Context,
	keys []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, key string) (T, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	var mu sync.Mutex
	results := make([]BulkResult, len(keys))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)

	for i, key := range keys {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = BulkResult{Key: key, Error: err.Error(), err: err}
				return nil
			}
			defer sem.Release(1)

			data, err := operation(ctx, key)
			if err != nil {
				results[i] = BulkResult{Key: key, Error: err.Error(), err: err}
			} else {
				results[i] = BulkResult{Key: key, Success: true, Data: data}
			}

			if progress {
				current := done.Add(1)
				mu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, len(keys))
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	if progress && len(keys) > 0 {
		_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d\n", done.Load(), len(keys))
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

// firstFailure returns the error of the first failed result, if any.
func firstFailure(results []BulkResult) error {
	for _, r := range results {
		if !r.Success {
			return r.err
		}
	}
	return nil
}
