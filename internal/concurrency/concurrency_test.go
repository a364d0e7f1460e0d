package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_BoundsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)
	require.NoError(t, sem.Acquire(context.Background()))
	require.NoError(t, sem.Acquire(context.Background()))
	assert.Equal(t, 0, sem.AvailablePermits())

	sem.Release()
	assert.Equal(t, 1, sem.AvailablePermits())
}

func TestSemaphore_AcquireRespectsContext(t *testing.T) {
	sem := NewSemaphore(1)
	require.NoError(t, sem.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := sem.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_ExecuteTask_ReleasesOnSuccessAndFailure(t *testing.T) {
	c := NewController(1)

	_, err := c.ExecuteTask(context.Background(), "t1", func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.sem.AvailablePermits())

	_, err = c.ExecuteTask(context.Background(), "t2", func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, c.sem.AvailablePermits())
}

func TestController_Stop_FailsFastAndIsIdempotent(t *testing.T) {
	c := NewController(2)
	c.Stop()
	c.Stop()

	_, err := c.ExecuteTask(context.Background(), "t", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestController_ExecuteTaskWithRetry_BacksOffAndStopsOnExhaustion(t *testing.T) {
	c := NewController(1)
	var attempts int32

	_, err := c.ExecuteTaskWithRetry(context.Background(), "t", func(ctx context.Context) (any, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("always fails")
	}, 2, time.Millisecond)

	assert.Error(t, err)
	assert.EqualValues(t, 3, attempts)
}

func TestController_ExecuteTaskWithRetry_StopsRetryingWhenStopped(t *testing.T) {
	c := NewController(1)
	var attempts int32

	_, err := c.ExecuteTaskWithRetry(context.Background(), "t", func(ctx context.Context) (any, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			c.Stop()
		}
		return nil, errors.New("fails")
	}, 5, time.Millisecond)

	assert.ErrorIs(t, err, ErrStopped)
	assert.EqualValues(t, 1, attempts)
}
