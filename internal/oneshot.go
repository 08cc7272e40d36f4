package internal

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCompleted is returned when a OneShot is completed a second time.
	ErrCompleted = errors.New("oneshot already completed")
	// ErrConsumed is returned when a OneShot value is awaited a second time.
	ErrConsumed = errors.New("oneshot value already consumed")
)

type oneShotState int

const (
	oneShotEmpty oneShotState = iota
	oneShotValue
	oneShotError
	oneShotConsumed
)

// OneShot transfers exactly one value or error from one goroutine to
// another. The producing side calls Complete or Fail once; the consuming
// side calls Await once, blocking until the cell is filled. Both the second
// completion and the second retrieval are reported usage errors.
type OneShot[T any] struct {
	mu    *sync.Mutex
	cond  *sync.Cond
	state oneShotState
	value T
	err   error
}

func NewOneShot[T any]() *OneShot[T] {
	mu := &sync.Mutex{}
	return &OneShot[T]{
		mu:   mu,
		cond: sync.NewCond(mu),
	}
}

// Complete stores the value and wakes all waiters. Only the first
// Complete/Fail wins; later attempts return ErrCompleted.
func (o *OneShot[T]) Complete(value T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != oneShotEmpty {
		return ErrCompleted
	}
	o.value = value
	o.state = oneShotValue
	o.cond.Broadcast()
	return nil
}

// Fail stores an error instead of a value. The next Await returns it.
func (o *OneShot[T]) Fail(err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != oneShotEmpty {
		return ErrCompleted
	}
	o.err = err
	o.state = oneShotError
	o.cond.Broadcast()
	return nil
}

// Await blocks until the cell leaves the empty state and then consumes it,
// returning the stored value or the producer's error. A second Await
// returns ErrConsumed rather than blocking or re-reading.
func (o *OneShot[T]) Await() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for o.state == oneShotEmpty {
		o.cond.Wait()
	}
	return o.consumeLocked()
}

// AwaitContext is Await bounded by ctx; on cancellation the cell is left
// untouched so a later Await can still retrieve the value.
func (o *OneShot[T]) AwaitContext(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	stop := context.AfterFunc(ctx, func() {
		o.mu.Lock()
		o.cond.Broadcast()
		o.mu.Unlock()
	})
	defer stop()

	o.mu.Lock()
	defer o.mu.Unlock()
	for o.state == oneShotEmpty {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		o.cond.Wait()
	}
	return o.consumeLocked()
}

func (o *OneShot[T]) consumeLocked() (T, error) {
	var zero T
	switch o.state {
	case oneShotValue:
		o.state = oneShotConsumed
		value := o.value
		o.value = zero
		return value, nil
	case oneShotError:
		o.state = oneShotConsumed
		return zero, o.err
	default:
		return zero, ErrConsumed
	}
}

// Ready reports whether a value or error is available without consuming it.
func (o *OneShot[T]) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == oneShotValue || o.state == oneShotError
}
