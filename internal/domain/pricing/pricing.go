// Package pricing implements the time-decay discount policy for offers.
// The effective price is a pure function of an offer snapshot and a clock
// reading, so callers are responsible for capturing the result at claim
// time: re-quoting later, closer to the deadline, yields a deeper discount.
package pricing

import "time"

// Tier labels for the discount ladder.
const (
	TierBase       = "base"
	TierThirtyOff  = "-30%"
	TierFiftyOff   = "-50%"
	TierSeventyOff = "-70%"
)

// Snapshot carries the offer fields the policy reads. OriginalPriceCents of
// zero (or negative) means the offer has no pre-discount reference and the
// listed price always applies.
type Snapshot struct {
	PriceCents         int64
	OriginalPriceCents int64
	ExpiresAt          time.Time
}

// Quote is the computed tier label and effective price in cents.
type Quote struct {
	Tier       string
	PriceCents int64
}

// Effective computes the quoted tier and price at the given instant.
// Discounts deepen as the deadline approaches:
//
//	> 120 minutes to expiry  -> base price
//	61-120 minutes           -> 30% off the original price
//	31-60 minutes            -> 50% off
//	<= 30 minutes            -> 70% off
//
// Minutes-to-expiry is floored to whole minutes. Cent amounts are rounded
// half up; this is the single place rounding is defined.
func Effective(s Snapshot, now time.Time) Quote {
	if s.OriginalPriceCents <= 0 {
		return Quote{Tier: TierBase, PriceCents: s.PriceCents}
	}

	minutes := int64(s.ExpiresAt.Sub(now) / time.Minute)
	switch {
	case minutes <= 30:
		return Quote{Tier: TierSeventyOff, PriceCents: percentOf(s.OriginalPriceCents, 30)}
	case minutes <= 60:
		return Quote{Tier: TierFiftyOff, PriceCents: percentOf(s.OriginalPriceCents, 50)}
	case minutes <= 120:
		return Quote{Tier: TierThirtyOff, PriceCents: percentOf(s.OriginalPriceCents, 70)}
	default:
		price := s.PriceCents
		if price <= 0 {
			price = s.OriginalPriceCents
		}
		return Quote{Tier: TierBase, PriceCents: price}
	}
}

// percentOf returns pct% of cents, rounded half up.
func percentOf(cents, pct int64) int64 {
	return (cents*pct + 50) / 100
}
