package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestOneShotCompleteAwait covers the happy path: set once, get once.
func TestOneShotCompleteAwait(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	if err := cell.Complete(10); err != nil {
		t.Fatalf("complete: %v", err)
	}
	value, err := cell.Await()
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if value != 10 {
		t.Fatalf("got %d; want 10", value)
	}
}

// TestOneShotFailPropagates verifies an error set by the producer surfaces
// on the consumer's retrieval.
func TestOneShotFailPropagates(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	cell := NewOneShot[string]()
	if err := cell.Fail(sentinel); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if _, err := cell.Await(); !errors.Is(err, sentinel) {
		t.Fatalf("got %v; want the producer's error", err)
	}
}

// TestOneShotSecondCompletion verifies only the first transition wins.
func TestOneShotSecondCompletion(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	if err := cell.Complete(1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := cell.Complete(2); !errors.Is(err, ErrCompleted) {
		t.Fatalf("second Complete: got %v; want ErrCompleted", err)
	}
	if err := cell.Fail(errors.New("late")); !errors.Is(err, ErrCompleted) {
		t.Fatalf("Fail after Complete: got %v; want ErrCompleted", err)
	}
	if value, err := cell.Await(); err != nil || value != 1 {
		t.Fatalf("got (%d, %v); want (1, nil)", value, err)
	}
}

// TestOneShotSingleRetrieval verifies the value is consumed on first Await.
func TestOneShotSingleRetrieval(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	cell.Complete(5)
	if _, err := cell.Await(); err != nil {
		t.Fatalf("first await: %v", err)
	}
	if _, err := cell.Await(); !errors.Is(err, ErrConsumed) {
		t.Fatalf("second await: got %v; want ErrConsumed", err)
	}
}

// TestOneShotAwaitBlocks verifies Await suspends until the producer sets
// the value, mirroring a task blocked on a promise.
func TestOneShotAwaitBlocks(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	completed := make(chan struct{})
	got := make(chan int, 1)
	go func() {
		value, err := cell.Await()
		if err != nil {
			t.Errorf("await: %v", err)
		}
		select {
		case <-completed:
		default:
			t.Error("await returned before Complete")
		}
		got <- value
	}()

	time.Sleep(50 * time.Millisecond)
	close(completed)
	cell.Complete(42)

	select {
	case value := <-got:
		if value != 42 {
			t.Fatalf("got %d; want 42", value)
		}
	case <-time.After(time.Second):
		t.Fatal("await did not unblock after Complete")
	}
}

// TestOneShotAwaitContextCancel verifies cancellation does not consume the
// cell: the value stays retrievable by a later Await.
func TestOneShotAwaitContextCancel(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := cell.AwaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v; want context.DeadlineExceeded", err)
	}

	cell.Complete(9)
	if value, err := cell.Await(); err != nil || value != 9 {
		t.Fatalf("got (%d, %v); want (9, nil)", value, err)
	}
}

// TestOneShotReady checks Ready reflects the cell state without consuming.
func TestOneShotReady(t *testing.T) {
	t.Parallel()

	cell := NewOneShot[int]()
	if cell.Ready() {
		t.Fatal("empty cell reported ready")
	}
	cell.Complete(1)
	if !cell.Ready() {
		t.Fatal("completed cell not ready")
	}
	cell.Await()
	if cell.Ready() {
		t.Fatal("consumed cell still reported ready")
	}
}
