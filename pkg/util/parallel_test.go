package util

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParallelRunsAllInputs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)

	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 3, func(ctx context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 5)
}

func TestParallelReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallel(context.Background(), []int{1, 2, 3}, 1, func(ctx context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestParallelHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	ran := 0
	inputs := make([]int, 100)
	err := Parallel(ctx, inputs, 4, func(ctx context.Context, n int) error {
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	mu.Lock()
	defer mu.Unlock()
	require.Less(t, ran, 100)
}

func TestParallelEmptyInput(t *testing.T) {
	err := Parallel(context.Background(), nil, 4, func(ctx context.Context, n int) error {
		t.Fatal("should not run")
		return nil
	})
	require.NoError(t, err)
}
