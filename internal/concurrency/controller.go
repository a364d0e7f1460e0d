package concurrency

import (
	"context"
	"sync/atomic"
	"time"
)

// TaskFunc is a unit of work submitted to a Controller. A non-nil error is
// treated as a failed attempt by ExecuteTaskWithRetry.
type TaskFunc func(ctx context.Context) (any, error)

// Controller wraps a Semaphore with a stop flag (spec §4.3). Stop is
// idempotent; subsequent ExecuteTask/ExecuteTaskWithRetry calls fail fast
// with ErrStopped. Already-running task bodies are not cancelled — the
// controller has no cancellation channel, matching spec §5's "no
// preemptive cancellation of in-flight network I/O".
type Controller struct {
	sem     *Semaphore
	stopped atomic.Bool
}

// NewController constructs a Controller bounding parallelism to permits.
func NewController(permits int) *Controller {
	return &Controller{sem: NewSemaphore(permits)}
}

// Stop is idempotent and causes all subsequent acquisitions to fail.
func (c *Controller) Stop() {
	c.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (c *Controller) Stopped() bool {
	return c.stopped.Load()
}

// ExecuteTask acquires a permit, runs fn, and always releases the permit
// (success, failure, or panic during fn does not leak it).
func (c *Controller) ExecuteTask(ctx context.Context, id string, fn TaskFunc) (any, error) {
	if c.stopped.Load() {
		return nil, ErrStopped
	}
	if err := c.sem.Acquire(ctx); err != nil {
		return nil, err
	}
	if c.stopped.Load() {
		c.sem.Release()
		return nil, ErrStopped
	}
	defer c.sem.Release()
	return fn(ctx)
}

// ExecuteTaskWithRetry retries a failing task up to maxRetries additional
// times with exponential backoff baseDelay*2^attempt, stopping
// immediately if the controller is stopped between attempts.
func (c *Controller) ExecuteTaskWithRetry(ctx context.Context, id string, fn TaskFunc, maxRetries int, baseDelay time.Duration) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if c.stopped.Load() {
			return nil, ErrStopped
		}
		result, err := c.ExecuteTask(ctx, id, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}
		delay := baseDelay * time.Duration(1<<uint(attempt))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
