package repository

import (
	"context"
	"sync"
	"time"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// MockQueueRepository is a hand-written, in-memory implementation of
// QueueRepository used in unit tests. No mock-generation library needed.
type MockQueueRepository struct {
	mu   sync.Mutex
	rows map[int64]*domain.QueueRow

	// Optional error overrides — set in tests to simulate failure paths.
	MarkSentErr   error
	MarkFailedErr error
}

func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{rows: make(map[int64]*domain.QueueRow)}
}

// Put seeds a row so tests can observe its terminal state afterwards.
func (m *MockQueueRepository) Put(row *domain.QueueRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *row
	m.rows[row.ID] = &clone
}

// Get returns the stored row, or nil when the id is unknown.
func (m *MockQueueRepository) Get(id int64) *domain.QueueRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil
	}
	clone := *r
	return &clone
}

func (m *MockQueueRepository) MarkSent(_ context.Context, id int64, attempted int, at time.Time) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.update(id, domain.StatusSent, attempted, at)
	return nil
}

func (m *MockQueueRepository) MarkFailed(_ context.Context, id int64, attempted int, at time.Time) error {
	if m.MarkFailedErr != nil {
		return m.MarkFailedErr
	}
	m.update(id, domain.StatusFailed, attempted, at)
	return nil
}

func (m *MockQueueRepository) update(id int64, status domain.Status, attempted int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		r = &domain.QueueRow{ID: id}
		m.rows[id] = r
	}
	r.Status = status
	r.Attempted = attempted
	r.LastAttempt = &at
}
