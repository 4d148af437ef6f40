package reservation

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodyhq/foody/internal/domain/offer"
	"github.com/foodyhq/foody/internal/domain/pricing"
)

// PickupWindow is how long a buyer has to collect a reservation, capped by
// the offer's own deadline.
const PickupWindow = 30 * time.Minute

// maxCodeAttempts bounds retries when a generated code collides with an
// existing one in the store.
const maxCodeAttempts = 5

// Service is the reservation engine: it orchestrates the atomic stock claim,
// the price lock-in and the status state machine. All clock reads go through
// the injected now func so tests can pin time.
type Service struct {
	offers       offer.Repository
	reservations Repository
	codes        CodeIssuer
	now          func() time.Time
}

// NewService creates a reservation Service with the given collaborators.
func NewService(offers offer.Repository, reservations Repository, codes CodeIssuer) *Service {
	return &Service{
		offers:       offers,
		reservations: reservations,
		codes:        codes,
		now:          time.Now,
	}
}

// Reserve claims one unit of the offer and creates a reservation with the
// price locked in at claim time. The claim and the reservation write form
// one logical unit: when the write fails, the claimed unit is restored so
// no stock is left referencing a reservation that does not exist.
func (s *Service) Reserve(ctx context.Context, offerID string) (*Reservation, error) {
	now := s.now().UTC()

	snap, err := s.offers.ClaimUnit(ctx, offerID, now)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrNotFound), errors.Is(err, offer.ErrArchived):
			// Archived offers are invisible to buyers, indistinguishable
			// from absent ones.
			return nil, ErrNotFound
		case errors.Is(err, offer.ErrOutOfStock), errors.Is(err, offer.ErrExpired):
			return nil, ErrUnavailable
		}
		return nil, errors.Wrap(err, "claim unit")
	}

	// Price reflects the moment of the claim, using the same clock reading
	// as the availability check.
	quote := pricing.Effective(pricing.Snapshot{
		PriceCents:         snap.PriceCents,
		OriginalPriceCents: snap.OriginalPriceCents,
		ExpiresAt:          snap.ExpiresAt,
	}, now)

	expiresAt := now.Add(PickupWindow)
	if snap.ExpiresAt.Before(expiresAt) {
		expiresAt = snap.ExpiresAt
	}

	r := &Reservation{
		ID:                  uuid.New().String(),
		OfferID:             snap.ID,
		RestaurantID:        snap.RestaurantID,
		Status:              StatusReserved,
		Qty:                 1,
		PriceCentsEffective: quote.PriceCents,
		Tier:                quote.Tier,
		CreatedAt:           now,
		ExpiresAt:           expiresAt,
	}

	for attempt := 0; ; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			s.compensateClaim(ctx, snap.ID)
			return nil, errors.Wrap(err, "generate code")
		}
		r.Code = code

		err = s.reservations.Create(ctx, r)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, ErrCodeConflict) && attempt < maxCodeAttempts-1 {
			continue
		}
		s.compensateClaim(ctx, snap.ID)
		return nil, errors.Wrap(err, "create reservation")
	}
}

// Redeem transitions a reservation to redeemed on behalf of the owning
// restaurant. A reservation found past its pickup window is transitioned to
// expired here: there is no background sweeper, redemption attempts are the
// only place stale reservations are noticed. The claimed unit is not
// restored on passive expiry.
func (s *Service) Redeem(ctx context.Context, restaurantID, code string) (*Reservation, error) {
	now := s.now().UTC()

	r, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup reservation")
	}
	// Ownership before state: a guessed code must not leak another
	// restaurant's reservation state.
	if r.RestaurantID != restaurantID {
		return nil, ErrForbidden
	}
	if r.Status.Terminal() {
		return nil, s.terminalError(r.Status)
	}

	if !now.Before(r.ExpiresAt) {
		ok, err := s.reservations.Transition(ctx, r.ID, StatusExpired, nil)
		if err != nil {
			return nil, errors.Wrap(err, "expire reservation")
		}
		if !ok {
			// Lost the race: some other attempt got there first.
			return nil, s.refetchTerminal(ctx, code)
		}
		return nil, ErrExpired
	}

	ok, err := s.reservations.Transition(ctx, r.ID, StatusRedeemed, &now)
	if err != nil {
		return nil, errors.Wrap(err, "redeem reservation")
	}
	if !ok {
		return nil, s.refetchTerminal(ctx, code)
	}

	r.Status = StatusRedeemed
	r.RedeemedAt = &now
	return r, nil
}

// Cancel voids a reservation while it is still in the reserved state and
// returns the claimed unit to the offer's pool. Not reachable from the
// current HTTP surface; kept so a cancellation endpoint needs no engine
// change.
func (s *Service) Cancel(ctx context.Context, code string) error {
	r, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if r.Status.Terminal() {
		return s.terminalError(r.Status)
	}

	ok, err := s.reservations.Transition(ctx, r.ID, StatusCanceled, nil)
	if err != nil {
		return errors.Wrap(err, "cancel reservation")
	}
	if !ok {
		return s.refetchTerminal(ctx, code)
	}

	if err := s.offers.RestoreUnit(ctx, r.OfferID); err != nil {
		return errors.Wrap(err, "restore unit")
	}
	return nil
}

// GetByCode returns the reservation carrying the given code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	return s.reservations.GetByCode(ctx, code)
}

// KPI folds the restaurant's reservations into the per-status counts,
// redemption rate, revenue and buyer savings.
func (s *Service) KPI(ctx context.Context, restaurantID string) (*Stats, error) {
	c, err := s.reservations.CountByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, errors.Wrap(err, "count reservations")
	}

	// "Reserved" in the aggregate counts every reservation ever placed;
	// the redemption rate is redeemed over that total, not over the ones
	// still waiting for pickup.
	total := c.Reserved + c.Redeemed + c.Canceled + c.Expired
	rate := 0.0
	if total > 0 {
		rate, _ = decimal.NewFromInt(c.Redeemed).
			DivRound(decimal.NewFromInt(total), 3).
			Float64()
	}

	return &Stats{
		Reserved:       total,
		Redeemed:       c.Redeemed,
		Canceled:       c.Canceled,
		Expired:        c.Expired,
		RedemptionRate: rate,
		RevenueCents:   c.RevenueCents,
		SavedCents:     c.SavedCents,
	}, nil
}

// compensateClaim undoes a successful stock claim after the reservation
// write failed. Best effort: the unit is already unsold either way.
func (s *Service) compensateClaim(ctx context.Context, offerID string) {
	_ = s.offers.RestoreUnit(ctx, offerID)
}

// refetchTerminal re-reads a reservation after losing a transition race and
// reports the terminal state the winner left behind.
func (s *Service) refetchTerminal(ctx context.Context, code string) error {
	r, err := s.reservations.GetByCode(ctx, code)
	if err != nil {
		return errors.Wrap(err, "refetch reservation")
	}
	return s.terminalError(r.Status)
}

func (s *Service) terminalError(st Status) error {
	if st == StatusExpired {
		return ErrExpired
	}
	return ErrAlreadyProcessed
}
