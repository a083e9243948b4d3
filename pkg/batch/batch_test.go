// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProcessesAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	var sum atomic.Int64
	errs := Run(context.Background(), items, 3, func(_ context.Context, _ int, item int) error {
		sum.Add(int64(item))
		return nil
	})

	require.Len(t, errs, len(items))
	assert.NoError(t, FirstError(errs))
	assert.Equal(t, int64(28), sum.Load())
}

func TestRun_BoundsConcurrency(t *testing.T) {
	items := make([]int, 10)

	var mu sync.Mutex
	inFlight, peak := 0, 0

	Run(context.Background(), items, 3, func(_ context.Context, _ int, _ int) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})

	assert.LessOrEqual(t, peak, 3)
}

func TestRun_FailureDoesNotStopSiblings(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	boom := errors.New("boom")

	var ran atomic.Int64
	errs := Run(context.Background(), items, 2, func(_ context.Context, idx int, _ string) error {
		ran.Add(1)
		if idx == 1 {
			return boom
		}
		return nil
	})

	assert.Equal(t, int64(4), ran.Load(), "all items should run even after a failure")
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
	assert.ErrorIs(t, FirstError(errs), boom)
}

func TestRun_ErrorsAlignedByIndex(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5}

	errs := Run(context.Background(), items, 3, func(_ context.Context, idx int, _ int) error {
		if idx%2 == 1 {
			return errors.New("odd")
		}
		return nil
	})

	for i := range items {
		if i%2 == 1 {
			assert.Error(t, errs[i], "index %d", i)
		} else {
			assert.NoError(t, errs[i], "index %d", i)
		}
	}
}

func TestRun_CancelledContextSkipsRemainingWindows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 6)

	var ran atomic.Int64
	errs := Run(ctx, items, 2, func(_ context.Context, idx int, _ int) error {
		ran.Add(1)
		if idx == 1 {
			cancel()
		}
		return nil
	})

	// The first window runs; later windows fail fast with the context error.
	assert.Equal(t, int64(2), ran.Load())
	assert.ErrorIs(t, errs[2], context.Canceled)
	assert.ErrorIs(t, errs[5], context.Canceled)
}

func TestRun_EmptyInput(t *testing.T) {
	errs := Run(context.Background(), nil, 3, func(_ context.Context, _ int, _ int) error {
		t.Fatal("fn should not be called")
		return nil
	})

	assert.Empty(t, errs)
	assert.NoError(t, FirstError(errs))
}
