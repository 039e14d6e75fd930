package dataflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/xlfilecreator/pkg/dataflow"
)

func TestForEach_AllItems(t *testing.T) {
	items := []string{"a.xlsx", "b.xlsx", "c.xlsx", "d.xlsx"}
	seen := make([]string, len(items))

	err := dataflow.ForEach(context.Background(), items, func(_ context.Context, i int, item string) error {
		seen[i] = item
		return nil
	}, dataflow.WithWorkers(3))

	require.NoError(t, err)
	assert.Equal(t, items, seen)
}

func TestForEach_Retry(t *testing.T) {
	var attempts int32
	err := dataflow.ForEach(context.Background(), []int{1}, func(context.Context, int, int) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient error")
		}
		return nil
	}, dataflow.WithRetry(3, dataflow.LinearBackoff(time.Millisecond)))

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts)
}

func TestForEach_RetryIf(t *testing.T) {
	permanent := errors.New("permanent")
	var attempts int32
	err := dataflow.ForEach(context.Background(), []int{1}, func(context.Context, int, int) error {
		atomic.AddInt32(&attempts, 1)
		return permanent
	}, dataflow.WithRetry(5, nil), dataflow.WithRetryIf(func(err error) bool { return !errors.Is(err, permanent) }))

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, int32(1), attempts)
}

func TestForEach_FirstErrorStops(t *testing.T) {
	boom := errors.New("boom")
	var calls int32
	items := make([]int, 50)

	err := dataflow.ForEach(context.Background(), items, func(ctx context.Context, i int, _ int) error {
		atomic.AddInt32(&calls, 1)
		if i == 0 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	}, dataflow.WithWorkers(2))

	assert.ErrorIs(t, err, boom)
	assert.Less(t, atomic.LoadInt32(&calls), int32(50))
}

func TestForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dataflow.ForEach(ctx, []int{1, 2}, func(context.Context, int, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForEach_Empty(t *testing.T) {
	called := false
	err := dataflow.ForEach(context.Background(), []int(nil), func(context.Context, int, int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
