package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffective_TierBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		minutesToExpiry int
		wantTier        string
		wantPrice       int64
	}{
		{name: "deep discount at 1 minute", minutesToExpiry: 1, wantTier: TierSeventyOff, wantPrice: 300},
		{name: "deep discount at boundary 30", minutesToExpiry: 30, wantTier: TierSeventyOff, wantPrice: 300},
		{name: "half off just past 30", minutesToExpiry: 31, wantTier: TierFiftyOff, wantPrice: 500},
		{name: "half off at boundary 60", minutesToExpiry: 60, wantTier: TierFiftyOff, wantPrice: 500},
		{name: "thirty off just past 60", minutesToExpiry: 61, wantTier: TierThirtyOff, wantPrice: 700},
		{name: "thirty off at boundary 120", minutesToExpiry: 120, wantTier: TierThirtyOff, wantPrice: 700},
		{name: "base just past 120", minutesToExpiry: 121, wantTier: TierBase, wantPrice: 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{
				PriceCents:         450,
				OriginalPriceCents: 1000,
				ExpiresAt:          now.Add(time.Duration(tt.minutesToExpiry) * time.Minute),
			}
			q := Effective(snap, now)
			assert.Equal(t, tt.wantTier, q.Tier)
			assert.Equal(t, tt.wantPrice, q.PriceCents)
		})
	}
}

func TestEffective_SubMinuteFloor(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 30m59s to expiry floors to 30 whole minutes: still the deepest tier.
	snap := Snapshot{PriceCents: 450, OriginalPriceCents: 1000, ExpiresAt: now.Add(30*time.Minute + 59*time.Second)}
	q := Effective(snap, now)
	assert.Equal(t, TierSeventyOff, q.Tier)
	assert.Equal(t, int64(300), q.PriceCents)
}

func TestEffective_NoOriginalPrice(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		original int64
	}{
		{name: "zero original", original: 0},
		{name: "negative original", original: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No discount reference: listed price applies even minutes from expiry.
			snap := Snapshot{PriceCents: 450, OriginalPriceCents: tt.original, ExpiresAt: now.Add(5 * time.Minute)}
			q := Effective(snap, now)
			assert.Equal(t, TierBase, q.Tier)
			assert.Equal(t, int64(450), q.PriceCents)
		})
	}
}

func TestEffective_BaseFallsBackToOriginal(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Listed price missing outside the discount window: the original price
	// is the only price there is.
	snap := Snapshot{PriceCents: 0, OriginalPriceCents: 1000, ExpiresAt: now.Add(3 * time.Hour)}
	q := Effective(snap, now)
	assert.Equal(t, TierBase, q.Tier)
	assert.Equal(t, int64(1000), q.PriceCents)
}

func TestEffective_RoundingHalfUp(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		original  int64
		minutes   int
		wantPrice int64
	}{
		// 30% of 999 = 299.7 -> 300
		{name: "seventy off rounds up", original: 999, minutes: 10, wantPrice: 300},
		// 50% of 333 = 166.5 -> 167 (half rounds up)
		{name: "fifty off half rounds up", original: 333, minutes: 45, wantPrice: 167},
		// 70% of 101 = 70.7 -> 71
		{name: "thirty off rounds up", original: 101, minutes: 90, wantPrice: 71},
		// 30% of 110 = 33.0 exactly
		{name: "exact value unchanged", original: 110, minutes: 10, wantPrice: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{PriceCents: 1, OriginalPriceCents: tt.original, ExpiresAt: now.Add(time.Duration(tt.minutes) * time.Minute)}
			assert.Equal(t, tt.wantPrice, Effective(snap, now).PriceCents)
		})
	}
}

func TestEffective_Pure(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{PriceCents: 450, OriginalPriceCents: 1000, ExpiresAt: base.Add(90 * time.Minute)}

	first := Effective(snap, base)
	// Same inputs, same result.
	assert.Equal(t, first, Effective(snap, base))
	// Later clock, deeper discount; the snapshot itself is untouched.
	later := Effective(snap, base.Add(65*time.Minute))
	assert.Equal(t, TierFiftyOff, later.Tier)
	assert.Equal(t, int64(1000), snap.OriginalPriceCents)
}
