package repository

import "context"

// DeviceTokenRepository reads token-by-user associations and disables
// registrations the push transport rejected. Disabled tokens never appear
// in a future EnabledTokensByUser result; there is no re-enable path.
type DeviceTokenRepository interface {
	EnabledTokensByUser(ctx context.Context, userID string) ([]string, error)
	Disable(ctx context.Context, token string) error
}

// RestaurantRepository is the read-only owner association consulted when a
// queue row addresses a restaurant instead of a user.
type RestaurantRepository interface {
	// OwnerID returns domain.ErrNotFound when no restaurant matches.
	OwnerID(ctx context.Context, restaurantID string) (string, error)
}
