// Package limiter provides resource limiters for CPU-intensive operations.
package limiter

import (
	"context"

	"instant-translator/internal/config"
)

// Slots is a counting semaphore.
type Slots struct {
	ch chan struct{}
}

// New creates a limiter with n slots (at least 1).
func New(n int) *Slots {
	if n < 1 {
		n = 1
	}
	return &Slots{ch: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Slots) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (s *Slots) Release() {
	<-s.ch
}

// InUse returns the number of taken slots.
func (s *Slots) InUse() int {
	return len(s.ch)
}

// cpu limits the total number of concurrent local engine subprocesses
// across all engines. Several resident engines translating at once would
// otherwise each start their own Python process.
var cpu = New(config.MaxConcurrentCPUOperations)

// CPU returns the process-wide CPU slot limiter.
func CPU() *Slots {
	return cpu
}
