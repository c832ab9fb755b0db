package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/repository"
)

// strategyFunc resolves tokens for one recipient type.
type strategyFunc func(ctx context.Context, row *domain.QueueRow) ([]string, error)

// Resolver turns a queue row into the set of device tokens to notify.
//
// Direct recipient_user_id wins; otherwise the recipient_type is dispatched
// through the strategy table, so supporting a new audience type is a table
// entry rather than a new conditional branch. A row addressing nobody, an
// unrecognised type, or a missing owner association all resolve to an empty
// set — absence of recipients is a valid terminal condition, not an error.
type Resolver struct {
	tokens      repository.DeviceTokenRepository
	restaurants repository.RestaurantRepository
	strategies  map[domain.RecipientType]strategyFunc
	logger      *zap.Logger
}

func New(
	tokens repository.DeviceTokenRepository,
	restaurants repository.RestaurantRepository,
	logger *zap.Logger,
) *Resolver {
	r := &Resolver{
		tokens:      tokens,
		restaurants: restaurants,
		logger:      logger,
	}
	r.strategies = map[domain.RecipientType]strategyFunc{
		domain.RecipientRestaurant: r.resolveRestaurant,
	}
	return r
}

// Resolve returns the enabled tokens for the row's audience. The returned
// slice may be empty. An error is returned only for infrastructure faults;
// missing associations are swallowed to an empty result.
func (r *Resolver) Resolve(ctx context.Context, row *domain.QueueRow) ([]string, error) {
	if row.RecipientUserID != nil && *row.RecipientUserID != "" {
		tokens, err := r.tokens.EnabledTokensByUser(ctx, *row.RecipientUserID)
		if err != nil {
			return nil, fmt.Errorf("resolve user %s: %w", *row.RecipientUserID, err)
		}
		return tokens, nil
	}

	if row.RecipientType != nil {
		strategy, ok := r.strategies[*row.RecipientType]
		if !ok {
			r.logger.Debug("unsupported recipient type",
				zap.String("recipient_type", string(*row.RecipientType)),
				zap.Int64("row_id", row.ID))
			return nil, nil
		}
		return strategy(ctx, row)
	}

	return nil, nil
}

// resolveRestaurant maps payload.restaurant_id through the owner association
// to the owner's enabled tokens.
func (r *Resolver) resolveRestaurant(ctx context.Context, row *domain.QueueRow) ([]string, error) {
	restaurantID := row.PayloadString("restaurant_id")
	if restaurantID == "" {
		return nil, nil
	}

	ownerID, err := r.restaurants.OwnerID(ctx, restaurantID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve restaurant %s: %w", restaurantID, err)
	}

	tokens, err := r.tokens.EnabledTokensByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve restaurant owner %s: %w", ownerID, err)
	}
	return tokens, nil
}
