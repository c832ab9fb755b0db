package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/delivery-notifier/internal/domain"
)

type pgQueueRepository struct {
	pool *pgxpool.Pool
}

// NewPgQueueRepository returns a QueueRepository backed by PostgreSQL.
func NewPgQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &pgQueueRepository{pool: pool}
}

func (r *pgQueueRepository) MarkSent(ctx context.Context, id int64, attempted int, at time.Time) error {
	return r.setStatus(ctx, id, domain.StatusSent, attempted, at)
}

func (r *pgQueueRepository) MarkFailed(ctx context.Context, id int64, attempted int, at time.Time) error {
	return r.setStatus(ctx, id, domain.StatusFailed, attempted, at)
}

func (r *pgQueueRepository) setStatus(ctx context.Context, id int64, status domain.Status, attempted int, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_queue
		SET status = $1, attempted = $2, last_attempt = $3
		WHERE id = $4`, status, attempted, at, id)
	if err != nil {
		return fmt.Errorf("update queue row %d: %w", id, err)
	}
	return nil
}
