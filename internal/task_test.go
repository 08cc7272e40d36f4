package internal

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestTaskAsyncRunsImmediately verifies PolicyAsync starts work without
// anyone waiting on the result.
func TestTaskAsyncRunsImmediately(t *testing.T) {
	t.Parallel()

	var ran int64
	task := Launch(PolicyAsync, func() (int, error) {
		atomic.AddInt64(&ran, 1)
		return 21 * 2, nil
	})

	deadline := time.After(time.Second)
	for atomic.LoadInt64(&ran) == 0 {
		select {
		case <-deadline:
			t.Fatal("async task never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	value, err := task.Wait()
	if err != nil || value != 42 {
		t.Fatalf("got (%d, %v); want (42, nil)", value, err)
	}
}

// TestTaskDeferredRunsOnWait verifies PolicyDeferred delays the work until
// the first Wait, which runs it on the waiting goroutine.
func TestTaskDeferredRunsOnWait(t *testing.T) {
	t.Parallel()

	var ran int64
	task := Launch(PolicyDeferred, func() (string, error) {
		atomic.AddInt64(&ran, 1)
		return "done", nil
	})

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt64(&ran) != 0 {
		t.Fatal("deferred task ran before Wait")
	}
	if task.Ready() {
		t.Fatal("deferred task reported ready before Wait")
	}

	value, err := task.Wait()
	if err != nil || value != "done" {
		t.Fatalf("got (%q, %v); want (\"done\", nil)", value, err)
	}
	if atomic.LoadInt64(&ran) != 1 {
		t.Fatalf("task ran %d times; want 1", atomic.LoadInt64(&ran))
	}
}

// TestTaskErrorPropagates verifies the function's error reaches Wait.
func TestTaskErrorPropagates(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("task failed")
	task := Launch(PolicyAsync, func() (int, error) {
		return 0, sentinel
	})
	if _, err := task.Wait(); !errors.Is(err, sentinel) {
		t.Fatalf("got %v; want the task's error", err)
	}
}

// TestTaskPanicContained verifies a panicking task surfaces an error
// instead of crashing the process.
func TestTaskPanicContained(t *testing.T) {
	t.Parallel()

	task := Launch(PolicyAsync, func() (int, error) {
		panic("kaboom")
	})
	_, err := task.Wait()
	if err == nil {
		t.Fatal("panicking task returned nil error")
	}
}

// TestTaskWaitIsSingleUse verifies the result is consumed on first Wait.
func TestTaskWaitIsSingleUse(t *testing.T) {
	t.Parallel()

	task := Launch(PolicyDeferred, func() (int, error) { return 1, nil })
	if _, err := task.Wait(); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if _, err := task.Wait(); !errors.Is(err, ErrConsumed) {
		t.Fatalf("second Wait: got %v; want ErrConsumed", err)
	}
}

// TestTaskDeferredRunsOnce verifies concurrent Waits on a deferred task run
// the function exactly once.
func TestTaskDeferredRunsOnce(t *testing.T) {
	t.Parallel()

	var ran int64
	task := Launch(PolicyDeferred, func() (int, error) {
		atomic.AddInt64(&ran, 1)
		return 8, nil
	})

	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := task.Wait()
			results <- err
		}()
	}

	var succeeded int
	for i := 0; i < 4; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else if !errors.Is(err, ErrConsumed) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d Waits received the value; want exactly 1", succeeded)
	}
	if atomic.LoadInt64(&ran) != 1 {
		t.Fatalf("task ran %d times; want 1", atomic.LoadInt64(&ran))
	}
}

func TestPolicyString(t *testing.T) {
	t.Parallel()

	if PolicyAsync.String() != "async" || PolicyDeferred.String() != "deferred" {
		t.Fatalf("got %q and %q", PolicyAsync.String(), PolicyDeferred.String())
	}
}
