package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
)

// listPublicOffers returns reservable offers with live quoted prices,
// optionally filtered to a single restaurant.
func (h *Handler) listPublicOffers(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")

	quoted, err := h.offers.ListPublic(r.Context(), restaurantID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range quoted {
		encodeQuotedOffer(&e, &quoted[i])
	}
	e.ArrEnd()
	writeJSON(w, &e)
}

// reserveOffer claims one unit of the offer and returns the reservation with
// its redemption code and locked-in price.
func (h *Handler) reserveOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.reservations.Reserve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.reserveCounter.Add(r.Context(), 1)

	var e jx.Encoder
	encodeReservation(&e, res)
	writeJSONStatus(w, http.StatusCreated, &e)
}

// getReservation returns the current state of a reservation for the buyer's
// pickup screen. The code itself is the capability: whoever holds it may
// read the reservation.
func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	res, err := h.reservations.GetByCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeReservation(&e, res)
	writeJSON(w, &e)
}
