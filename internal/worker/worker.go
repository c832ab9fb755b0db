package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/queue"
)

// Processor runs the per-row dispatch pipeline.
// Implemented by service.DispatchService; tests substitute a fake.
type Processor interface {
	Process(ctx context.Context, row *domain.QueueRow)
}

// Worker is a single goroutine that continuously pulls rows from the
// dispatch queue and runs the pipeline. Completion order across workers is
// independent of arrival order; rows share no application-level locking.
type Worker struct {
	id     int
	q      *queue.Queue
	proc   Processor
	logger *zap.Logger
}

func NewWorker(id int, q *queue.Queue, proc Processor, logger *zap.Logger) *Worker {
	return &Worker{id: id, q: q, proc: proc, logger: logger}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		item, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		w.proc.Process(ctx, &item.Row)
		w.q.Done(item.Row.ID)
	}
}
