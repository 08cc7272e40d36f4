package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// Policy selects when a launched function actually runs.
type Policy int

const (
	// PolicyAsync starts the function on its own goroutine immediately.
	PolicyAsync Policy = iota
	// PolicyDeferred delays execution until the first Wait, which then runs
	// the function synchronously on the waiting goroutine.
	PolicyDeferred
)

func (p Policy) String() string {
	switch p {
	case PolicyAsync:
		return "async"
	case PolicyDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Task is an owned handle on a launched function. Wait is the mandatory
// terminal operation: it joins the work and yields its result exactly once.
type Task[T any] struct {
	policy Policy
	fn     func() (T, error)
	run    sync.Once
	result *OneShot[T]
}

// Launch runs fn under the given policy. Panics inside fn are contained and
// surfaced as the task's error instead of crashing the process.
func Launch[T any](policy Policy, fn func() (T, error)) *Task[T] {
	t := &Task[T]{
		policy: policy,
		fn:     fn,
		result: NewOneShot[T](),
	}
	if policy == PolicyAsync {
		go t.execute()
	}
	return t
}

func (t *Task[T]) execute() {
	t.run.Do(func() {
		var (
			value T
			err   error
		)
		recovered := panics.Try(func() {
			value, err = t.fn()
		})
		if recovered != nil {
			t.result.Fail(fmt.Errorf("task panicked: %w", recovered.AsError()))
			return
		}
		if err != nil {
			t.result.Fail(err)
			return
		}
		t.result.Complete(value)
	})
}

// Wait joins the task and returns its result. Under PolicyDeferred the
// first Wait runs the function right here. The result is single-use: a
// second Wait returns ErrConsumed.
func (t *Task[T]) Wait() (T, error) {
	if t.policy == PolicyDeferred {
		t.execute()
	}
	return t.result.Await()
}

// WaitContext is Wait bounded by ctx. Deferred tasks still run to
// completion on the calling goroutine; the bound applies to waiting for an
// async result, not to the work itself.
func (t *Task[T]) WaitContext(ctx context.Context) (T, error) {
	if t.policy == PolicyDeferred {
		t.execute()
	}
	return t.result.AwaitContext(ctx)
}

// Ready reports whether the result is available without blocking. Deferred
// tasks that have not been waited on are never ready.
func (t *Task[T]) Ready() bool {
	return t.result.Ready()
}
