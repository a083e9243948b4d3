// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package batch executes work over a slice in fixed-size concurrent windows.
//
// # Concurrency Model
//
// Items are processed in consecutive windows of at most N elements. All items
// within a window run concurrently, and the whole window is awaited before the
// next one starts. This bounds peak concurrency while keeping item ordering
// deterministic at window granularity, which matters for upload pipelines that
// must not overwhelm the object store.
package batch

import (
	"context"
	"sync"
)

// Run processes items in concurrent windows of at most size elements.
//
// The returned slice holds one error per item, aligned by index (nil on
// success). A failing item never prevents its siblings from running; callers
// decide whether any failure is fatal via [FirstError].
//
// Parameters:
//   - ctx: propagated to fn; cancellation stops new windows from starting.
//   - items: the work list.
//   - size: maximum number of items in flight at once (values < 1 mean 1).
//   - fn: the work function, invoked with the item's index in items.
func Run[T any](ctx context.Context, items []T, size int, fn func(ctx context.Context, index int, item T) error) []error {
	if size < 1 {
		size = 1
	}

	errs := make([]error, len(items))

	for start := 0; start < len(items); start += size {
		// Stop dispatching new windows once the context is gone.
		if err := ctx.Err(); err != nil {
			for i := start; i < len(items); i++ {
				errs[i] = err
			}
			return errs
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				errs[idx] = fn(ctx, idx, items[idx])
			}(i)
		}
		wg.Wait()
	}

	return errs
}

// FirstError returns the first non-nil error in errs, or nil.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
