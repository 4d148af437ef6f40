package offer

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/foodyhq/foody/internal/domain/pricing"
)

// ErrInvalidInput is returned when a create request fails field validation.
var ErrInvalidInput = errors.New("invalid offer input")

const maxTitleLen = 200

// CreateRequest holds validated input for listing a new offer.
type CreateRequest struct {
	RestaurantID       string
	Title              string
	Description        string
	PriceCents         int64
	OriginalPriceCents int64
	QtyTotal           int
	ExpiresAt          time.Time
}

// Quoted pairs an offer with its live quoted price at some instant.
type Quoted struct {
	Offer Offer
	Quote pricing.Quote
}

// Service implements the merchant-facing offer operations and the public
// listing. Stock mutation goes through the Repository's atomic primitives.
type Service struct {
	offers Repository
	now    func() time.Time
}

// NewService creates an offer Service backed by the given repository.
func NewService(offers Repository) *Service {
	return &Service{offers: offers, now: time.Now}
}

// Create validates the request and persists a new offer with full stock.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Offer, error) {
	title := strings.TrimSpace(req.Title)
	switch {
	case title == "" || utf8.RuneCountInString(title) > maxTitleLen:
		return nil, errors.Wrap(ErrInvalidInput, "title")
	case req.PriceCents <= 0:
		return nil, errors.Wrap(ErrInvalidInput, "price_cents must be positive")
	case req.OriginalPriceCents < 0:
		return nil, errors.Wrap(ErrInvalidInput, "original_price_cents must be positive")
	case req.QtyTotal < 1:
		return nil, errors.Wrap(ErrInvalidInput, "qty_total must be at least 1")
	}

	now := s.now()
	if !req.ExpiresAt.After(now) {
		return nil, errors.Wrap(ErrInvalidInput, "expires_at must be in the future")
	}

	o := &Offer{
		ID:                 uuid.New().String(),
		RestaurantID:       req.RestaurantID,
		Title:              title,
		Description:        strings.TrimSpace(req.Description),
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		QtyTotal:           req.QtyTotal,
		QtyLeft:            req.QtyTotal,
		ExpiresAt:          req.ExpiresAt.UTC(),
		CreatedAt:          now.UTC(),
	}
	if err := s.offers.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create offer")
	}
	return o, nil
}

// List returns the restaurant's own offers, filtered by archive state.
func (s *Service) List(ctx context.Context, restaurantID string, filter ListFilter) ([]Offer, error) {
	if !filter.Valid() {
		return nil, errors.Wrap(ErrInvalidInput, "status filter")
	}
	return s.offers.ListByRestaurant(ctx, restaurantID, filter)
}

// Archive hides an offer from all listings. Only the owning restaurant may
// archive, and archiving is reversible via Unarchive.
func (s *Service) Archive(ctx context.Context, id, restaurantID string) error {
	return s.offers.Archive(ctx, id, restaurantID, s.now())
}

// Unarchive makes an archived offer visible again. The offer's own deadline
// still applies: restoring past expires_at does not revive it.
func (s *Service) Unarchive(ctx context.Context, id, restaurantID string) error {
	return s.offers.Unarchive(ctx, id, restaurantID)
}

// ListPublic returns reservable offers with the live quoted tier and price
// computed at call time. Quotes are informational: the binding price is the
// one the reservation engine locks in at claim time.
func (s *Service) ListPublic(ctx context.Context, restaurantID string) ([]Quoted, error) {
	now := s.now()
	rows, err := s.offers.ListPublic(ctx, restaurantID, now)
	if err != nil {
		return nil, errors.Wrap(err, "list public offers")
	}

	quoted := make([]Quoted, len(rows))
	for i, o := range rows {
		quoted[i] = Quoted{
			Offer: o,
			Quote: pricing.Effective(pricing.Snapshot{
				PriceCents:         o.PriceCents,
				OriginalPriceCents: o.OriginalPriceCents,
				ExpiresAt:          o.ExpiresAt,
			}, now),
		}
	}
	return quoted, nil
}
