package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/foodyhq/foody/internal/domain/reservation"
)

const (
	reservationColumns = `id, code, offer_id, restaurant_id, status, qty,
	price_cents_effective, tier, created_at, expires_at, redeemed_at`

	insertReservationSQL = `INSERT INTO reservations (id, code, offer_id,
	restaurant_id, status, qty, price_cents_effective, tier, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getReservationByCodeSQL = `SELECT ` + reservationColumns + `
	FROM reservations WHERE code = $1`

	// transitionSQL is the set-status-if-current-status-equals primitive.
	// The WHERE clause pins the source state, so of any number of
	// concurrent transition attempts exactly one reports a row affected.
	transitionSQL = `UPDATE reservations SET status = $2, redeemed_at = $3
	WHERE id = $1 AND status = 'reserved'`

	// The SUM aggregates come back as NUMERIC and scan through the
	// shopspring codec registered in NewPool.
	countByRestaurantSQL = `SELECT
	COUNT(*) FILTER (WHERE r.status = 'reserved'),
	COUNT(*) FILTER (WHERE r.status = 'redeemed'),
	COUNT(*) FILTER (WHERE r.status = 'canceled'),
	COUNT(*) FILTER (WHERE r.status = 'expired'),
	COALESCE(SUM(r.price_cents_effective) FILTER (WHERE r.status = 'redeemed'), 0),
	COALESCE(SUM(GREATEST(o.original_price_cents - r.price_cents_effective, 0))
		FILTER (WHERE r.status = 'redeemed' AND o.original_price_cents > 0), 0)
	FROM reservations r
	JOIN offers o ON o.id = r.offer_id
	WHERE r.restaurant_id = $1`

	uniqueViolationCode = "23505"
)

var _ reservation.Repository = (*ReservationRepository)(nil)

// ReservationRepository implements reservation.Repository backed by
// PostgreSQL.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository returns a ReservationRepository that uses the
// given pool.
func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create persists a new reservation. A unique violation on the code column
// maps to reservation.ErrCodeConflict so the engine can retry with a fresh
// code.
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.pool.Exec(ctx, insertReservationSQL,
		res.ID, res.Code, res.OfferID, res.RestaurantID, string(res.Status),
		res.Qty, res.PriceCentsEffective, res.Tier, res.CreatedAt, res.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return reservation.ErrCodeConflict
		}
		return fmt.Errorf("creating reservation %q: %w", res.ID, err)
	}
	return nil
}

// GetByCode returns the reservation carrying the given redemption code.
func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	rows, err := r.pool.Query(ctx, getReservationByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("getting reservation by code: %w", err)
	}

	res, err := pgx.CollectExactlyOneRow(rows, scanReservation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reservation.ErrNotFound
		}
		return nil, fmt.Errorf("getting reservation by code: %w", err)
	}
	return &res, nil
}

// Transition atomically moves a reserved reservation into a terminal state.
func (r *ReservationRepository) Transition(ctx context.Context, id string, to reservation.Status, redeemedAt *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, transitionSQL, id, string(to), redeemedAt)
	if err != nil {
		return false, fmt.Errorf("transitioning reservation %q to %s: %w", id, to, err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountByRestaurant folds status counts, revenue and savings in a single
// aggregate query.
func (r *ReservationRepository) CountByRestaurant(ctx context.Context, restaurantID string) (*reservation.StatusCounts, error) {
	var (
		c reservation.StatusCounts

		revenue, saved decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, countByRestaurantSQL, restaurantID).Scan(
		&c.Reserved, &c.Redeemed, &c.Canceled, &c.Expired, &revenue, &saved,
	)
	if err != nil {
		return nil, fmt.Errorf("counting reservations for %q: %w", restaurantID, err)
	}
	c.RevenueCents = revenue.IntPart()
	c.SavedCents = saved.IntPart()
	return &c, nil
}

func scanReservation(row pgx.CollectableRow) (reservation.Reservation, error) {
	var (
		res    reservation.Reservation
		status string
	)
	err := row.Scan(
		&res.ID, &res.Code, &res.OfferID, &res.RestaurantID, &status, &res.Qty,
		&res.PriceCentsEffective, &res.Tier, &res.CreatedAt, &res.ExpiresAt, &res.RedeemedAt,
	)
	res.Status = reservation.Status(status)
	return res, err
}
