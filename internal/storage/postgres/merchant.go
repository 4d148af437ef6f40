package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodyhq/foody/internal/domain/merchant"
)

const (
	insertRestaurantSQL = `INSERT INTO restaurants (id, title, created_at)
	VALUES ($1, $2, $3)`

	insertAPIKeySQL = `INSERT INTO api_keys (restaurant_id, key_hash)
	VALUES ($1, $2)`

	getRestaurantSQL = `SELECT id, title, created_at
	FROM restaurants WHERE id = $1`

	getAPIKeySQL = `SELECT restaurant_id, key_hash
	FROM api_keys WHERE restaurant_id = $1`
)

var _ merchant.Repository = (*MerchantRepository)(nil)

// MerchantRepository implements merchant.Repository backed by PostgreSQL.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository returns a MerchantRepository that uses the given pool.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// CreateWithKey inserts a restaurant and its API key hash in one transaction
// so a restaurant can never exist without a credential.
func (r *MerchantRepository) CreateWithKey(ctx context.Context, m *merchant.Restaurant, keyHash string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, insertRestaurantSQL, m.ID, m.Title, m.CreatedAt); err != nil {
		return fmt.Errorf("creating restaurant %q: %w", m.ID, err)
	}
	if _, err := tx.Exec(ctx, insertAPIKeySQL, m.ID, keyHash); err != nil {
		return fmt.Errorf("creating api key for %q: %w", m.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRestaurant returns a restaurant by id.
func (r *MerchantRepository) GetRestaurant(ctx context.Context, id string) (*merchant.Restaurant, error) {
	var m merchant.Restaurant
	err := r.pool.QueryRow(ctx, getRestaurantSQL, id).Scan(&m.ID, &m.Title, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}
		return nil, fmt.Errorf("getting restaurant %q: %w", id, err)
	}
	return &m, nil
}

// GetKey returns the stored API key record for a restaurant.
func (r *MerchantRepository) GetKey(ctx context.Context, restaurantID string) (*merchant.APIKeyRecord, error) {
	var rec merchant.APIKeyRecord
	err := r.pool.QueryRow(ctx, getAPIKeySQL, restaurantID).Scan(&rec.RestaurantID, &rec.KeyHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}
		return nil, fmt.Errorf("getting api key for %q: %w", restaurantID, err)
	}
	return &rec, nil
}
