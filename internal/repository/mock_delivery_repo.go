package repository

import (
	"context"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// MockDeliveryRepository is an in-memory DeliveryRepository for tests.
type MockDeliveryRepository struct {
	Quote *domain.DeliveryQuote
	Err   error

	LastBranchID string
	LastLat      float64
	LastLng      float64
	LastPrice    float64
}

func (m *MockDeliveryRepository) ComputeForBranch(_ context.Context, branchID string, lat, lng, price float64) (*domain.DeliveryQuote, error) {
	m.LastBranchID = branchID
	m.LastLat = lat
	m.LastLng = lng
	m.LastPrice = price
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote, nil
}
