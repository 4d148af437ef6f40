package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodyhq/foody/internal/domain/offer"
)

const (
	offerColumns = `id, restaurant_id, title, description, price_cents,
	original_price_cents, qty_total, qty_left, expires_at, archived_at, created_at`

	insertOfferSQL = `INSERT INTO offers (id, restaurant_id, title, description,
	price_cents, original_price_cents, qty_total, qty_left, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getOfferSQL = `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	listOffersSQL = `SELECT ` + offerColumns + ` FROM offers
	WHERE restaurant_id = $1
	  AND ($2 = 'all' OR ($2 = 'active' AND archived_at IS NULL) OR ($2 = 'archived' AND archived_at IS NOT NULL))
	ORDER BY created_at DESC`

	listPublicOffersSQL = `SELECT ` + offerColumns + ` FROM offers
	WHERE archived_at IS NULL AND qty_left > 0 AND expires_at > $1
	  AND ($2 = '' OR restaurant_id = $2)
	ORDER BY expires_at`

	// claimUnitSQL is the atomic decrement-if-available primitive: the row
	// predicate and the decrement happen in one statement, so two callers
	// racing on the last unit cannot both get a row back.
	claimUnitSQL = `UPDATE offers SET qty_left = qty_left - 1
	WHERE id = $1 AND archived_at IS NULL AND qty_left > 0 AND expires_at > $2
	RETURNING ` + offerColumns

	restoreUnitSQL = `UPDATE offers SET qty_left = LEAST(qty_left + 1, qty_total)
	WHERE id = $1`

	archiveOfferSQL = `UPDATE offers SET archived_at = $3
	WHERE id = $1 AND restaurant_id = $2 AND archived_at IS NULL`

	unarchiveOfferSQL = `UPDATE offers SET archived_at = NULL
	WHERE id = $1 AND restaurant_id = $2`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	_, err := r.pool.Exec(ctx, insertOfferSQL,
		o.ID, o.RestaurantID, o.Title, o.Description,
		o.PriceCents, nullableCents(o.OriginalPriceCents),
		o.QtyTotal, o.QtyLeft, o.ExpiresAt, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating offer %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single offer by its identifier.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}
	return &o, nil
}

// ListByRestaurant returns a restaurant's offers filtered by archive state.
func (r *OfferRepository) ListByRestaurant(ctx context.Context, restaurantID string, filter offer.ListFilter) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listOffersSQL, restaurantID, string(filter))
	if err != nil {
		return nil, fmt.Errorf("listing offers for %q: %w", restaurantID, err)
	}

	offers, err := pgx.CollectRows(rows, scanOffer)
	if err != nil {
		return nil, fmt.Errorf("listing offers for %q: %w", restaurantID, err)
	}
	return offers, nil
}

// ListPublic returns reservable offers, soonest deadline first.
func (r *OfferRepository) ListPublic(ctx context.Context, restaurantID string, now time.Time) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listPublicOffersSQL, now, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing public offers: %w", err)
	}

	offers, err := pgx.CollectRows(rows, scanOffer)
	if err != nil {
		return nil, fmt.Errorf("listing public offers: %w", err)
	}
	return offers, nil
}

// ClaimUnit atomically decrements qty_left and returns the post-claim
// snapshot. When no row matches, the offer is re-read once to classify the
// failure.
func (r *OfferRepository) ClaimUnit(ctx context.Context, id string, now time.Time) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, claimUnitSQL, id, now)
	if err != nil {
		return nil, fmt.Errorf("claiming unit of %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("claiming unit of %q: %w", id, err)
	}

	return nil, r.classifyClaimFailure(ctx, id, now)
}

// classifyClaimFailure decides which claim precondition failed. The offer
// may have changed between the update and this read; precedence is
// archived > expired > sold out, matching the update predicate.
func (r *OfferRepository) classifyClaimFailure(ctx context.Context, id string, now time.Time) error {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case o.ArchivedAt != nil:
		return offer.ErrArchived
	case !now.Before(o.ExpiresAt):
		return offer.ErrExpired
	default:
		return offer.ErrOutOfStock
	}
}

// RestoreUnit returns one claimed unit to the pool, capped at qty_total.
func (r *OfferRepository) RestoreUnit(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, restoreUnitSQL, id)
	if err != nil {
		return fmt.Errorf("restoring unit of %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

// Archive sets the soft-delete marker for an offer owned by restaurantID.
func (r *OfferRepository) Archive(ctx context.Context, id, restaurantID string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, archiveOfferSQL, id, restaurantID, now)
	if err != nil {
		return fmt.Errorf("archiving offer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyOwnershipFailure(ctx, id, restaurantID)
	}
	return nil
}

// Unarchive clears the soft-delete marker for an offer owned by restaurantID.
func (r *OfferRepository) Unarchive(ctx context.Context, id, restaurantID string) error {
	tag, err := r.pool.Exec(ctx, unarchiveOfferSQL, id, restaurantID)
	if err != nil {
		return fmt.Errorf("unarchiving offer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyOwnershipFailure(ctx, id, restaurantID)
	}
	return nil
}

func (r *OfferRepository) classifyOwnershipFailure(ctx context.Context, id, restaurantID string) error {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.RestaurantID != restaurantID {
		return offer.ErrForbidden
	}
	// Owned but already in the requested archive state: treat as success.
	return nil
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o        offer.Offer
		original *int64
	)
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.Title, &o.Description, &o.PriceCents,
		&original, &o.QtyTotal, &o.QtyLeft, &o.ExpiresAt, &o.ArchivedAt, &o.CreatedAt,
	)
	if original != nil {
		o.OriginalPriceCents = *original
	}
	return o, err
}

// nullableCents maps a zero cents value to SQL NULL.
func nullableCents(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}
