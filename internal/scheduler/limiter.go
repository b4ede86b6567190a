package scheduler

import (
	"sync/atomic"
)

// Limiter bounds the number of concurrently running task executions.
// A fire that finds no free slot is dropped, never queued, so acquiring
// is non-blocking.
type Limiter struct {
	slots  chan struct{}
	active atomic.Int64
}

// NewLimiter creates a limiter with the given bound. A bound <= 0 falls
// back to 10.
func NewLimiter(max int) *Limiter {
	if max <= 0 {
		max = 10
	}
	return &Limiter{slots: make(chan struct{}, max)}
}

// TryAcquire claims a slot if one is free and reports whether it did.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot.
func (l *Limiter) Release() {
	l.active.Add(-1)
	select {
	case <-l.slots:
	default:
	}
}

// Active returns the number of held slots.
func (l *Limiter) Active() int {
	return int(l.active.Load())
}

// Max returns the configured bound.
func (l *Limiter) Max() int {
	return cap(l.slots)
}
