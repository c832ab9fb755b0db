package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/delivery-notifier/internal/domain"
)

// DeliveryRepository proxies the geospatial cost computation. The formula
// lives entirely in the database function compute_delivery_for_branch;
// this layer only binds parameters and scans the result.
type DeliveryRepository interface {
	// ComputeForBranch returns domain.ErrNotFound when the branch does not
	// exist or the function yields no row.
	ComputeForBranch(ctx context.Context, branchID string, lat, lng, price float64) (*domain.DeliveryQuote, error)
}

type pgDeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeliveryRepository returns a DeliveryRepository backed by PostgreSQL.
func NewPgDeliveryRepository(pool *pgxpool.Pool) DeliveryRepository {
	return &pgDeliveryRepository{pool: pool}
}

func (r *pgDeliveryRepository) ComputeForBranch(ctx context.Context, branchID string, lat, lng, price float64) (*domain.DeliveryQuote, error) {
	var q domain.DeliveryQuote
	err := r.pool.QueryRow(ctx, `
		SELECT distance_m, distance_km, charged_km, cost
		FROM public.compute_delivery_for_branch($1::uuid, $2::double precision, $3::double precision, $4::numeric)`,
		branchID, lat, lng, price,
	).Scan(&q.DistanceM, &q.DistanceKm, &q.ChargedKm, &q.Cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("compute delivery for branch %s: %w", branchID, err)
	}
	return &q, nil
}
