package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/queue"
)

// Pool manages the lifecycle of the dispatch workers. It caps the number of
// concurrent in-flight pipeline runs at the configured worker count.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates n identical workers sharing one queue and processor.
func NewPool(n int, q *queue.Queue, proc Processor, logger *zap.Logger) *Pool {
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = NewWorker(i, q, proc, logger.With(zap.Int("worker_id", i)))
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight rows finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
