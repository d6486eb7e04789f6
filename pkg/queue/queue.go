// Package queue provides the bounded FIFO used between pipeline stages.
package queue

import (
	"context"
	"time"
)

// Forever as a timeout makes TrySend and Receive block until they succeed.
const Forever time.Duration = -1

// Bounded is a fixed-capacity FIFO. It is safe for multiple producers and a
// single consumer; ordering is strict FIFO across all producers as observed
// at enqueue time.
type Bounded[T any] struct {
	name string
	ch   chan T
}

// New creates a queue holding at most capacity items.
func New[T any](name string, capacity int) *Bounded[T] {
	if capacity <= 0 {
		panic("queue: capacity must be positive")
	}
	return &Bounded[T]{name: name, ch: make(chan T, capacity)}
}

// Name implements framework.Named.
func (q *Bounded[T]) Name() string {
	return q.name
}

// Cap returns the fixed capacity.
func (q *Bounded[T]) Cap() int {
	return cap(q.ch)
}

// Len returns the number of queued items.
func (q *Bounded[T]) Len() int {
	return len(q.ch)
}

// TrySend enqueues v if space becomes available within timeout. A zero
// timeout fails immediately on a full queue; Forever waits indefinitely.
// It returns false when v was not enqueued.
func (q *Bounded[T]) TrySend(v T, timeout time.Duration) bool {
	select {
	case q.ch <- v:
		return true
	default:
	}
	if timeout == 0 {
		return false
	}
	if timeout < 0 {
		q.ch <- v
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case q.ch <- v:
		return true
	case <-timer.C:
		return false
	}
}

// Receive dequeues the oldest item, waiting up to timeout on an empty
// queue. The second result is false when nothing was received.
func (q *Bounded[T]) Receive(timeout time.Duration) (v T, ok bool) {
	select {
	case v = <-q.ch:
		return v, true
	default:
	}
	if timeout == 0 {
		return v, false
	}
	if timeout < 0 {
		return <-q.ch, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case v = <-q.ch:
		return v, true
	case <-timer.C:
		return v, false
	}
}

// ReceiveContext dequeues the oldest item, waiting until ctx is done.
func (q *Bounded[T]) ReceiveContext(ctx context.Context) (v T, err error) {
	select {
	case v = <-q.ch:
		return v, nil
	case <-ctx.Done():
		return v, ctx.Err()
	}
}
