package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for offer lookup and stock claiming.
var (
	// ErrNotFound is returned when an offer does not exist or is invisible
	// to the caller.
	ErrNotFound = errors.New("offer not found")
	// ErrForbidden is returned when a restaurant operates on an offer it
	// does not own.
	ErrForbidden = errors.New("offer belongs to another restaurant")
	// ErrOutOfStock is returned by ClaimUnit when qty_left is zero.
	ErrOutOfStock = errors.New("offer sold out")
	// ErrExpired is returned by ClaimUnit when the offer deadline passed.
	ErrExpired = errors.New("offer expired")
	// ErrArchived is returned by ClaimUnit when the offer is archived.
	ErrArchived = errors.New("offer archived")
)

// Offer is a time-limited listing of surplus stock. QtyLeft is mutated only
// through the store's ClaimUnit/RestoreUnit primitives.
type Offer struct {
	ID                 string
	RestaurantID       string
	Title              string
	Description        string
	PriceCents         int64
	OriginalPriceCents int64 // 0 means no pre-discount reference
	QtyTotal           int
	QtyLeft            int
	ExpiresAt          time.Time
	ArchivedAt         *time.Time
	CreatedAt          time.Time
}

// Available reports whether the offer can be reserved at the given instant.
func (o *Offer) Available(now time.Time) bool {
	return o.ArchivedAt == nil && o.QtyLeft > 0 && now.Before(o.ExpiresAt)
}

// ListFilter selects which of a restaurant's offers to return.
type ListFilter string

const (
	FilterActive   ListFilter = "active"
	FilterArchived ListFilter = "archived"
	FilterAll      ListFilter = "all"
)

// Valid reports whether the filter is one of the known values.
func (f ListFilter) Valid() bool {
	switch f {
	case FilterActive, FilterArchived, FilterAll:
		return true
	}
	return false
}

// Repository is the offer store. ClaimUnit and RestoreUnit are the only
// operations allowed to touch qty_left; both must be atomic with respect to
// concurrent callers on the same offer row.
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	ListByRestaurant(ctx context.Context, restaurantID string, filter ListFilter) ([]Offer, error)
	// ListPublic returns unarchived offers with stock remaining and a
	// deadline after now, optionally filtered to one restaurant.
	ListPublic(ctx context.Context, restaurantID string, now time.Time) ([]Offer, error)

	// ClaimUnit atomically decrements qty_left by one and returns the
	// post-claim snapshot. Two callers racing on the last unit must not
	// both succeed. Failures are ErrNotFound, ErrArchived, ErrExpired or
	// ErrOutOfStock.
	ClaimUnit(ctx context.Context, id string, now time.Time) (*Offer, error)
	// RestoreUnit increments qty_left by one, capped at qty_total.
	RestoreUnit(ctx context.Context, id string) error

	// Archive and Unarchive toggle the soft-delete marker. Both fail with
	// ErrForbidden when restaurantID does not own the offer.
	Archive(ctx context.Context, id, restaurantID string, now time.Time) error
	Unarchive(ctx context.Context, id, restaurantID string) error
}
