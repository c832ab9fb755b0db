package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/queue"
)

// Channel the insert trigger notifies on; must match the migration.
const notifyChannel = "notification_queue_insert"

// Listener subscribes to insert events on the notification queue table via
// Postgres LISTEN/NOTIFY. The trigger serialises each inserted row to JSON,
// so events carry the full new row and no read-back is needed.
//
// The listener has two states: subscribed (receiving events) and
// unsubscribed (initial/terminal). There is no reconnect or backoff; a feed
// error ends the listener and Run returns it.
type Listener struct {
	pool   *pgxpool.Pool
	q      *queue.Queue
	logger *zap.Logger
}

func NewListener(pool *pgxpool.Pool, q *queue.Queue, logger *zap.Logger) *Listener {
	return &Listener{pool: pool, q: q, logger: logger}
}

// Run holds a dedicated connection in LISTEN mode and enqueues each decoded
// row. It blocks until ctx is cancelled (returns nil) or the feed fails.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", notifyChannel, err)
	}
	l.logger.Info("subscribed to queue inserts", zap.String("channel", notifyChannel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				l.logger.Info("listener stopping")
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		row, err := decodeRow([]byte(notification.Payload))
		if err != nil {
			l.logger.Error("undecodable queue event", zap.Error(err))
			continue
		}

		if err := l.q.Enqueue(queue.Item{Row: *row}); err != nil {
			// A duplicate event for an in-flight row is expected under the
			// at-least-once feed; a full queue leaves the row pending with
			// no re-delivery, mirroring the absence of a retry path.
			l.logger.Warn("dropping queue event",
				zap.Int64("row_id", row.ID), zap.Error(err))
			continue
		}

		l.logger.Debug("queue row accepted", zap.Int64("row_id", row.ID))
	}
}

// decodeRow parses the trigger's row_to_json payload.
func decodeRow(payload []byte) (*domain.QueueRow, error) {
	var row domain.QueueRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, fmt.Errorf("decode queue row: %w", err)
	}
	return &row, nil
}
