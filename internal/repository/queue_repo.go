package repository

import (
	"context"
	"time"
)

// QueueRepository defines the write surface against the notification queue.
// Rows are created by the upstream order services; the worker only moves
// them to a terminal status. The pgx implementation is in pg_queue_repo.go;
// tests use a hand-written mock (mock_queue_repo.go).
type QueueRepository interface {
	// MarkSent records a successful dispatch: status=sent, attempted set to
	// the given count, last_attempt set to at.
	MarkSent(ctx context.Context, id int64, attempted int, at time.Time) error
	// MarkFailed records a terminal failure with the same bookkeeping.
	MarkFailed(ctx context.Context, id int64, attempted int, at time.Time) error
}
