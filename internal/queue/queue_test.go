package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/queue"
)

func item(id int64) queue.Item {
	return queue.Item{Row: domain.QueueRow{ID: id, EventType: domain.EventOrderCreated}}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q := queue.New(10)

	if err := q.Enqueue(item(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := q.Dequeue(context.Background())
	if !ok {
		t.Fatal("expected an item")
	}
	if got.Row.ID != 1 {
		t.Fatalf("expected row 1, got %d", got.Row.ID)
	}
}

func TestQueue_DuplicateRowRejected(t *testing.T) {
	q := queue.New(10)

	if err := q.Enqueue(item(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Enqueue(item(1)); !errors.Is(err, domain.ErrDuplicateRow) {
		t.Fatalf("expected ErrDuplicateRow, got %v", err)
	}

	// The duplicate stays rejected while the row is being processed.
	_, _ = q.Dequeue(context.Background())
	if err := q.Enqueue(item(1)); !errors.Is(err, domain.ErrDuplicateRow) {
		t.Fatalf("expected ErrDuplicateRow while in flight, got %v", err)
	}

	// Done releases the id; a fresh event for the same row is accepted.
	q.Done(1)
	if err := q.Enqueue(item(1)); err != nil {
		t.Fatalf("expected enqueue after Done to succeed, got %v", err)
	}
}

func TestQueue_FullIsNonBlocking(t *testing.T) {
	q := queue.New(1)

	if err := q.Enqueue(item(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Enqueue(item(2)); !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	// A rejected row must not linger in the registry.
	_, _ = q.Dequeue(context.Background())
	if err := q.Enqueue(item(2)); err != nil {
		t.Fatalf("expected enqueue after drain to succeed, got %v", err)
	}
}

func TestQueue_DequeueReturnsFalseOnCancel(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Dequeue(ctx); ok {
			t.Error("expected ok=false on cancelled context")
		}
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue did not observe cancellation")
	}
}

func TestQueue_Depth(t *testing.T) {
	q := queue.New(10)

	if q.Depth() != 0 {
		t.Fatalf("expected empty queue, got depth %d", q.Depth())
	}
	_ = q.Enqueue(item(1))
	_ = q.Enqueue(item(2))
	if q.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", q.Depth())
	}
}
