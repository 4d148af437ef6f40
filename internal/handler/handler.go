// Package handler exposes the domain services over HTTP. Request bodies are
// decoded with strict, hand-written jx decoders; unknown fields and
// malformed values are rejected before anything reaches the domain layer.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/foodyhq/foody/internal/domain/merchant"
	"github.com/foodyhq/foody/internal/domain/offer"
	"github.com/foodyhq/foody/internal/domain/reservation"
)

// Handler serves the public and merchant API routes, delegating business
// logic to the injected domain services.
type Handler struct {
	merchants    *merchant.Service
	offers       *offer.Service
	reservations *reservation.Service

	reserveCounter metric.Int64Counter
	redeemCounter  metric.Int64Counter
}

// New constructs a Handler with the required domain services.
func New(
	merchants *merchant.Service,
	offers *offer.Service,
	reservations *reservation.Service,
) (*Handler, error) {
	meter := otel.Meter("github.com/foodyhq/foody/internal/handler")

	reserveCounter, err := meter.Int64Counter("foody.reservations.created")
	if err != nil {
		return nil, err
	}
	redeemCounter, err := meter.Int64Counter("foody.reservations.redeemed")
	if err != nil {
		return nil, err
	}

	return &Handler{
		merchants:      merchants,
		offers:         offers,
		reservations:   reservations,
		reserveCounter: reserveCounter,
		redeemCounter:  redeemCounter,
	}, nil
}

// Routes returns the API router. Merchant routes sit behind the API key
// middleware; public routes are open.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/offers", h.listPublicOffers)
		r.Post("/offers/{id}/reserve", h.reserveOffer)
		r.Get("/reservations/{code}", h.getReservation)

		r.Route("/merchant", func(r chi.Router) {
			r.Post("/register", h.registerMerchant)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAPIKey)
				r.Get("/offers", h.listMerchantOffers)
				r.Post("/offers", h.createOffer)
				r.Delete("/offers/{id}", h.archiveOffer)
				r.Post("/offers/{id}/restore", h.restoreOffer)
				r.Post("/redeem", h.redeemReservation)
				r.Get("/kpi", h.merchantKPI)
			})
		})
	})

	return r
}
