// Package concurrency provides the bounded-parallelism primitives the
// crawl engine uses to cap in-flight page tasks (spec §4.3), grounded on
// the channel-slot pattern in 99souls-ariadne's resources.Manager and the
// retry/backoff idiom in the teacher's internal/ai/gemini_client.go.
package concurrency

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Controller.ExecuteTask/ExecuteTaskWithRetry
// once the controller has been stopped. Semaphore.Acquire itself never
// returns it.
var ErrStopped = errors.New("stopped")

// Semaphore bounds concurrent access to `permits` slots with FIFO wakeup.
type Semaphore struct {
	slots   chan struct{}
	mu      sync.Mutex
	waiting int
}

// NewSemaphore constructs a Semaphore with the given number of permits.
func NewSemaphore(permits int) *Semaphore {
	if permits < 1 {
		permits = 1
	}
	return &Semaphore{slots: make(chan struct{}, permits)}
}

// Acquire blocks until a permit is available or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	s.mu.Lock()
	s.waiting++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.waiting--
		s.mu.Unlock()
	}()

	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit, waking exactly one waiter (channel send
// semantics give FIFO-ish fairness here — Go's runtime hands the freed
// buffer slot to the oldest blocked sender).
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// AvailablePermits returns the number of permits not currently held.
func (s *Semaphore) AvailablePermits() int {
	return cap(s.slots) - len(s.slots)
}

// WaitingCount returns the number of goroutines currently blocked in Acquire.
func (s *Semaphore) WaitingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}
