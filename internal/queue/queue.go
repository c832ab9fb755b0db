package queue

import (
	"context"
	"sync"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// Item is the unit of work handed from the listener to the worker pool.
// The insert event carries the full row, so no DB round trip is needed
// before processing.
type Item struct {
	Row domain.QueueRow
}

// Queue is the bounded channel feeding the dispatch worker pool, plus a
// registry of in-flight row ids.
//
// The change feed is at-least-once: the same insert event may be delivered
// twice, and a second event for a row still being processed must not spawn
// an overlapping pipeline run (reconcile is not safe to re-invoke). The
// registry covers a row from Enqueue until the worker calls Done.
type Queue struct {
	items chan Item

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func New(size int) *Queue {
	return &Queue{
		items:    make(chan Item, size),
		inflight: make(map[int64]struct{}),
	}
}

// Enqueue places an item on the queue.
// It is non-blocking: a full queue returns ErrQueueFull immediately rather
// than stalling the change-feed listener, and a row already enqueued or
// being processed returns ErrDuplicateRow.
func (q *Queue) Enqueue(item Item) error {
	q.mu.Lock()
	if _, ok := q.inflight[item.Row.ID]; ok {
		q.mu.Unlock()
		return domain.ErrDuplicateRow
	}
	q.inflight[item.Row.ID] = struct{}{}
	q.mu.Unlock()

	select {
	case q.items <- item:
		return nil
	default:
		q.release(item.Row.ID)
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (Item{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *Queue) Dequeue(ctx context.Context) (Item, bool) {
	select {
	case item := <-q.items:
		return item, true
	case <-ctx.Done():
		return Item{}, false
	}
}

// Done releases the row id from the in-flight registry. Workers call this
// after the pipeline run completes, whatever the outcome.
func (q *Queue) Done(id int64) {
	q.release(id)
}

// Depth returns the current number of items waiting.
// Used by the metrics layer for the queue-depth gauge.
func (q *Queue) Depth() int {
	return len(q.items)
}

func (q *Queue) release(id int64) {
	q.mu.Lock()
	delete(q.inflight, id)
	q.mu.Unlock()
}
