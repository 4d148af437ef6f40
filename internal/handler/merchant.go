package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/foodyhq/foody/internal/domain/offer"
)

// registerMerchant creates a restaurant and returns its API key. The key is
// shown exactly once; only its hash is stored.
func (h *Handler) registerMerchant(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeRegisterRequest(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.merchants.Register(r.Context(), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("restaurant_id")
	e.Str(reg.Restaurant.ID)
	e.FieldStart("api_key")
	e.Str(reg.APIKey)
	e.ObjEnd()
	writeJSONStatus(w, http.StatusCreated, &e)
}

// listMerchantOffers returns the authenticated restaurant's offers, filtered
// by the status query parameter (active, archived or all; default active).
func (h *Handler) listMerchantOffers(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())

	filter := offer.ListFilter(r.URL.Query().Get("status"))
	if filter == "" {
		filter = offer.FilterActive
	}

	offers, err := h.offers.List(r.Context(), restaurantID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range offers {
		encodeOffer(&e, &offers[i])
	}
	e.ArrEnd()
	writeJSON(w, &e)
}

// createOffer lists a new offer for the authenticated restaurant.
func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeCreateOfferRequest(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.offers.Create(r.Context(), offer.CreateRequest{
		RestaurantID:       restaurantID,
		Title:              req.Title,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		QtyTotal:           req.QtyTotal,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeOffer(&e, o)
	writeJSONStatus(w, http.StatusCreated, &e)
}

// archiveOffer soft-deletes an offer. Reversible via restoreOffer.
func (h *Handler) archiveOffer(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.offers.Archive(r.Context(), id, restaurantID); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w)
}

// restoreOffer clears the archive marker on an offer.
func (h *Handler) restoreOffer(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.offers.Unarchive(r.Context(), id, restaurantID); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w)
}

// redeemReservation marks a reservation as picked up. Stale reservations
// noticed here are expired in the same call.
func (h *Handler) redeemReservation(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := decodeRedeemRequest(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.reservations.Redeem(r.Context(), restaurantID, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.redeemCounter.Add(r.Context(), 1)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("reservation_id")
	e.Str(res.ID)
	e.FieldStart("redeemed_at")
	encodeTime(&e, *res.RedeemedAt)
	e.ObjEnd()
	writeJSON(w, &e)
}

// merchantKPI returns the restaurant's reservation aggregate.
func (h *Handler) merchantKPI(w http.ResponseWriter, r *http.Request) {
	restaurantID := restaurantFromContext(r.Context())

	stats, err := h.reservations.KPI(r.Context(), restaurantID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("reserved")
	e.Int64(stats.Reserved)
	e.FieldStart("redeemed")
	e.Int64(stats.Redeemed)
	e.FieldStart("canceled")
	e.Int64(stats.Canceled)
	e.FieldStart("expired")
	e.Int64(stats.Expired)
	e.FieldStart("redemption_rate")
	e.Float64(stats.RedemptionRate)
	e.FieldStart("revenue_cents")
	e.Int64(stats.RevenueCents)
	e.FieldStart("saved_cents")
	e.Int64(stats.SavedCents)
	e.ObjEnd()
	writeJSON(w, &e)
}

func writeOK(w http.ResponseWriter) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("ok")
	e.Bool(true)
	e.ObjEnd()
	writeJSON(w, &e)
}
