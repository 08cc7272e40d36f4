package internal

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Push after Close has been called.
var ErrClosed = errors.New("handoff queue is closed")

// HandoffQueue is a FIFO queue handing items from producer goroutines to
// consumer goroutines. Pop blocks while the queue is empty and only returns
// ok=false once the queue has been closed and fully drained.
type HandoffQueue[T any] struct {
	queue  []T
	closed bool
	mu     *sync.Mutex
	cond   *sync.Cond
}

func NewHandoffQueue[T any]() *HandoffQueue[T] {
	mu := &sync.Mutex{}
	return &HandoffQueue[T]{
		queue: make([]T, 0),
		mu:    mu,
		cond:  sync.NewCond(mu),
	}
}

// Push appends item to the tail and wakes one waiting consumer.
// Pushing into a closed queue is a usage error and is reported, not dropped.
func (q *HandoffQueue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.queue = append(q.queue, item)
	q.cond.Signal()
	return nil
}

// Pop removes and returns the head item, blocking while the queue is empty
// and not yet closed. It returns ok=false only when the queue is closed and
// drained; that state is terminal, so further calls return immediately.
func (q *HandoffQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.queue) == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.popLocked()
}

// PopContext is Pop with an abandon switch: if ctx is done before an item
// arrives or the queue closes, it returns ctx.Err(). A nil error with
// ok=false means closed-and-drained, same as Pop.
func (q *HandoffQueue[T]) PopContext(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	// cond.Wait cannot watch a channel, so cancellation is delivered as a
	// broadcast: the waiter wakes, re-checks ctx.Err in the predicate loop
	// and bails out instead of sleeping again.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.queue) == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		q.cond.Wait()
	}
	item, ok := q.popLocked()
	return item, ok, nil
}

// TryPop removes and returns the head item without blocking.
func (q *HandoffQueue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// popLocked assumes q.mu is held.
func (q *HandoffQueue[T]) popLocked() (T, bool) {
	if len(q.queue) == 0 {
		var zero T
		return zero, false
	}
	item := q.queue[0]
	q.queue = q.queue[1:]
	return item, true
}

// Close marks the queue as finished. Items already queued remain poppable;
// once drained every Pop returns ok=false immediately. Idempotent.
func (q *HandoffQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *HandoffQueue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *HandoffQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
