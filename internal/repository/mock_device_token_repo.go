package repository

import (
	"context"
	"sync"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// MockDeviceTokenRepository is an in-memory DeviceTokenRepository for tests.
type MockDeviceTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.DeviceToken // keyed by token string

	TokensErr  error
	DisableErr error
	// DisableErrFor fails Disable for specific tokens only.
	DisableErrFor map[string]error
}

func NewMockDeviceTokenRepository() *MockDeviceTokenRepository {
	return &MockDeviceTokenRepository{tokens: make(map[string]*domain.DeviceToken)}
}

// Register adds a token owned by userID, enabled by default.
func (m *MockDeviceTokenRepository) Register(token, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &domain.DeviceToken{Token: token, UserID: userID, Enabled: true}
}

// Enabled reports the enabled flag of a registered token.
func (m *MockDeviceTokenRepository) Enabled(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	return ok && t.Enabled
}

func (m *MockDeviceTokenRepository) EnabledTokensByUser(_ context.Context, userID string) ([]string, error) {
	if m.TokensErr != nil {
		return nil, m.TokensErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.tokens {
		if t.UserID == userID && t.Enabled {
			out = append(out, t.Token)
		}
	}
	return out, nil
}

func (m *MockDeviceTokenRepository) Disable(_ context.Context, token string) error {
	if m.DisableErr != nil {
		return m.DisableErr
	}
	if err, ok := m.DisableErrFor[token]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		t.Enabled = false
	}
	return nil
}

// MockRestaurantRepository is an in-memory RestaurantRepository for tests.
type MockRestaurantRepository struct {
	mu     sync.Mutex
	owners map[string]string // restaurant id → owner user id

	OwnerErr error
}

func NewMockRestaurantRepository() *MockRestaurantRepository {
	return &MockRestaurantRepository{owners: make(map[string]string)}
}

func (m *MockRestaurantRepository) SetOwner(restaurantID, ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[restaurantID] = ownerID
}

func (m *MockRestaurantRepository) OwnerID(_ context.Context, restaurantID string) (string, error) {
	if m.OwnerErr != nil {
		return "", m.OwnerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[restaurantID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return owner, nil
}
