package reservation

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Status is the reservation lifecycle state. Transitions are one-directional:
// reserved is the only non-terminal state, and redeemed, canceled and expired
// are absorbing.
type Status string

const (
	StatusReserved Status = "reserved"
	StatusRedeemed Status = "redeemed"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusReserved
}

// Sentinel errors surfaced by the reservation engine.
var (
	// ErrNotFound is returned when no reservation carries the given code.
	ErrNotFound = errors.New("reservation not found")
	// ErrForbidden is returned when a restaurant redeems a code issued for
	// a different restaurant.
	ErrForbidden = errors.New("reservation belongs to another restaurant")
	// ErrUnavailable is returned when the target offer cannot be claimed:
	// sold out, expired, archived or unknown.
	ErrUnavailable = errors.New("offer unavailable")
	// ErrAlreadyProcessed is returned when the reservation left the
	// reserved state before this attempt.
	ErrAlreadyProcessed = errors.New("reservation already processed")
	// ErrExpired is returned when the pickup window elapsed before
	// redemption.
	ErrExpired = errors.New("reservation expired")
	// ErrCodeConflict is returned by the store when a generated code is
	// already taken; the engine retries with a fresh code.
	ErrCodeConflict = errors.New("reservation code already exists")
)

// Reservation is a claim on one unit of an offer. RestaurantID and the
// effective price are frozen at creation time: later offer edits or pricing
// re-quotes never touch an existing reservation.
type Reservation struct {
	ID                  string
	Code                string
	OfferID             string
	RestaurantID        string
	Status              Status
	Qty                 int
	PriceCentsEffective int64
	Tier                string
	CreatedAt           time.Time
	ExpiresAt           time.Time
	RedeemedAt          *time.Time
}

// Stats is the per-restaurant KPI aggregate over all reservations.
type Stats struct {
	Reserved       int64   // every reservation ever placed, any status
	Redeemed       int64
	Canceled       int64
	Expired        int64
	RedemptionRate float64 // Redeemed / Reserved, rounded to 3 decimals
	RevenueCents   int64   // sum of effective prices over redeemed
	SavedCents     int64   // sum of (original - effective) over redeemed
}

// StatusCounts is the raw fold over persisted reservations that Stats is
// derived from. SavedCents only counts redeemed reservations whose offer
// carried a positive original price.
type StatusCounts struct {
	Reserved     int64
	Redeemed     int64
	Canceled     int64
	Expired      int64
	RevenueCents int64
	SavedCents   int64
}

// Repository persists reservations. Transition is the atomic primitive the
// exactly-once redemption property rests on: it succeeds for at most one of
// any set of concurrent callers racing on the same reservation.
type Repository interface {
	// Create persists a new reservation in the reserved state. It returns
	// ErrCodeConflict when the code is already taken.
	Create(ctx context.Context, r *Reservation) error
	GetByCode(ctx context.Context, code string) (*Reservation, error)

	// Transition atomically moves the reservation from StatusReserved to
	// the given terminal state, recording redeemedAt when the target is
	// StatusRedeemed. It returns false when the reservation was not in
	// the reserved state anymore.
	Transition(ctx context.Context, id string, to Status, redeemedAt *time.Time) (bool, error)

	// CountByRestaurant folds status counts, revenue and savings over the
	// restaurant's reservations.
	CountByRestaurant(ctx context.Context, restaurantID string) (*StatusCounts, error)
}
