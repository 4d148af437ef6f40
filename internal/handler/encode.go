package handler

import (
	"time"

	"github.com/go-faster/jx"

	"github.com/foodyhq/foody/internal/domain/offer"
	"github.com/foodyhq/foody/internal/domain/reservation"
)

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

// encodeOffer writes the merchant view of an offer.
func encodeOffer(e *jx.Encoder, o *offer.Offer) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("title")
	e.Str(o.Title)
	e.FieldStart("description")
	e.Str(o.Description)
	e.FieldStart("price_cents")
	e.Int64(o.PriceCents)
	e.FieldStart("original_price_cents")
	if o.OriginalPriceCents > 0 {
		e.Int64(o.OriginalPriceCents)
	} else {
		e.Null()
	}
	e.FieldStart("qty_total")
	e.Int(o.QtyTotal)
	e.FieldStart("qty_left")
	e.Int(o.QtyLeft)
	e.FieldStart("expires_at")
	encodeTime(e, o.ExpiresAt)
	e.FieldStart("archived_at")
	if o.ArchivedAt != nil {
		encodeTime(e, *o.ArchivedAt)
	} else {
		e.Null()
	}
	e.FieldStart("created_at")
	encodeTime(e, o.CreatedAt)
	e.ObjEnd()
}

// encodeQuotedOffer writes the buyer view of an offer: the merchant fields
// minus archive state, plus the live quoted tier and price.
func encodeQuotedOffer(e *jx.Encoder, q *offer.Quoted) {
	o := &q.Offer
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("restaurant_id")
	e.Str(o.RestaurantID)
	e.FieldStart("title")
	e.Str(o.Title)
	e.FieldStart("description")
	e.Str(o.Description)
	e.FieldStart("price_cents")
	e.Int64(o.PriceCents)
	e.FieldStart("original_price_cents")
	if o.OriginalPriceCents > 0 {
		e.Int64(o.OriginalPriceCents)
	} else {
		e.Null()
	}
	e.FieldStart("qty_left")
	e.Int(o.QtyLeft)
	e.FieldStart("expires_at")
	encodeTime(e, o.ExpiresAt)
	e.FieldStart("tier")
	e.Str(q.Quote.Tier)
	e.FieldStart("quoted_price_cents")
	e.Int64(q.Quote.PriceCents)
	e.ObjEnd()
}

func encodeReservation(e *jx.Encoder, r *reservation.Reservation) {
	e.ObjStart()
	e.FieldStart("reservation_id")
	e.Str(r.ID)
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("offer_id")
	e.Str(r.OfferID)
	e.FieldStart("status")
	e.Str(string(r.Status))
	e.FieldStart("qty")
	e.Int(r.Qty)
	e.FieldStart("price_cents_effective")
	e.Int64(r.PriceCentsEffective)
	e.FieldStart("tier")
	e.Str(r.Tier)
	e.FieldStart("created_at")
	encodeTime(e, r.CreatedAt)
	e.FieldStart("expires_at")
	encodeTime(e, r.ExpiresAt)
	e.FieldStart("redeemed_at")
	if r.RedeemedAt != nil {
		encodeTime(e, *r.RedeemedAt)
	} else {
		e.Null()
	}
	e.ObjEnd()
}
