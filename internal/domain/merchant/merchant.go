package merchant

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for merchant registration and authentication.
var (
	// ErrUnauthorized is returned when the presented API key is missing,
	// unknown, or does not match the restaurant's stored key hash.
	ErrUnauthorized = errors.New("invalid api key")
	// ErrNotFound is returned when a restaurant does not exist.
	ErrNotFound = errors.New("restaurant not found")
	// ErrInvalidInput is returned when registration input fails validation.
	ErrInvalidInput = errors.New("invalid merchant input")
)

// Restaurant is a registered merchant that lists offers.
type Restaurant struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// APIKeyRecord is the stored credential for one restaurant. Only the
// HMAC-SHA256 hash of the key survives registration.
type APIKeyRecord struct {
	RestaurantID string
	KeyHash      string
}

// Repository persists restaurants and their API key hashes.
type Repository interface {
	// CreateWithKey inserts the restaurant and its key hash together.
	CreateWithKey(ctx context.Context, r *Restaurant, keyHash string) error
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	// GetKey returns the stored key record for a restaurant, or
	// ErrNotFound.
	GetKey(ctx context.Context, restaurantID string) (*APIKeyRecord, error)
}
