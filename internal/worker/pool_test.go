package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/queue"
	"github.com/plateful/delivery-notifier/internal/worker"
)

// countingProcessor records every processed row id.
type countingProcessor struct {
	mu   sync.Mutex
	seen []int64
	// block, when non-nil, holds each Process call until closed.
	block chan struct{}
}

func (p *countingProcessor) Process(_ context.Context, row *domain.QueueRow) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.seen = append(p.seen, row.ID)
	p.mu.Unlock()
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestPool_ProcessesAllRows(t *testing.T) {
	q := queue.New(10)
	proc := &countingProcessor{}
	pool := worker.NewPool(2, q, proc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := int64(1); i <= 5; i++ {
		if err := q.Enqueue(queue.Item{Row: domain.QueueRow{ID: i}}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	deadline := time.After(2 * time.Second)
	for proc.count() < 5 {
		select {
		case <-deadline:
			t.Fatalf("expected 5 processed rows, got %d", proc.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	pool.Wait()
}

func TestPool_RunsConcurrently(t *testing.T) {
	q := queue.New(10)
	proc := &countingProcessor{block: make(chan struct{})}
	pool := worker.NewPool(2, q, proc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	// Two rows, two workers: both should be dequeued even though neither
	// pipeline run has completed. Completion order is independent of
	// arrival order.
	_ = q.Enqueue(queue.Item{Row: domain.QueueRow{ID: 1}})
	_ = q.Enqueue(queue.Item{Row: domain.QueueRow{ID: 2}})

	deadline := time.After(2 * time.Second)
	for q.Depth() > 0 {
		select {
		case <-deadline:
			t.Fatal("expected both rows to be picked up concurrently")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if proc.count() != 0 {
		t.Fatalf("no run should have completed yet, got %d", proc.count())
	}

	close(proc.block)
	for proc.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 processed rows, got %d", proc.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPool_WaitReturnsAfterCancel(t *testing.T) {
	q := queue.New(10)
	pool := worker.NewPool(3, q, &countingProcessor{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not shut down after context cancellation")
	}
}

func TestWorker_ReleasesInflightAfterProcessing(t *testing.T) {
	q := queue.New(10)
	proc := &countingProcessor{}
	pool := worker.NewPool(1, q, proc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	_ = q.Enqueue(queue.Item{Row: domain.QueueRow{ID: 42}})

	deadline := time.After(2 * time.Second)
	for proc.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("row was not processed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// A later duplicate insert event for a settled row must be accepted.
	var err error
	for {
		err = q.Enqueue(queue.Item{Row: domain.QueueRow{ID: 42}})
		if err == nil {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("in-flight id was never released: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
