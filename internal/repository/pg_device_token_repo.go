package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plateful/delivery-notifier/internal/domain"
)

type pgDeviceTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeviceTokenRepository returns a DeviceTokenRepository backed by PostgreSQL.
func NewPgDeviceTokenRepository(pool *pgxpool.Pool) DeviceTokenRepository {
	return &pgDeviceTokenRepository{pool: pool}
}

func (r *pgDeviceTokenRepository) EnabledTokensByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token FROM device_tokens
		WHERE user_id = $1 AND enabled = TRUE`, userID)
	if err != nil {
		return nil, fmt.Errorf("select tokens for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *pgDeviceTokenRepository) Disable(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE device_tokens SET enabled = FALSE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("disable token: %w", err)
	}
	return nil
}

type pgRestaurantRepository struct {
	pool *pgxpool.Pool
}

// NewPgRestaurantRepository returns a RestaurantRepository backed by PostgreSQL.
func NewPgRestaurantRepository(pool *pgxpool.Pool) RestaurantRepository {
	return &pgRestaurantRepository{pool: pool}
}

func (r *pgRestaurantRepository) OwnerID(ctx context.Context, restaurantID string) (string, error) {
	var ownerID string
	err := r.pool.QueryRow(ctx, `
		SELECT owner_id FROM restaurants WHERE id = $1`, restaurantID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select restaurant owner: %w", err)
	}
	return ownerID, nil
}
