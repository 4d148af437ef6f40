package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/foodyhq/foody/internal/domain/merchant"
	"github.com/foodyhq/foody/internal/domain/offer"
	"github.com/foodyhq/foody/internal/domain/reservation"
)

// Machine-readable error kinds. Every client-visible failure carries exactly
// one of these; internal storage detail never leaves the process.
const (
	kindInvalidInput     = "invalid_input"
	kindUnauthorized     = "unauthorized"
	kindForbidden        = "forbidden"
	kindNotFound         = "not_found"
	kindUnavailable      = "unavailable"
	kindAlreadyProcessed = "already_processed"
	kindExpired          = "expired"
	kindTransient        = "transient"
)

// writeJSON writes an encoded jx payload with a 200 status.
func writeJSON(w http.ResponseWriter, e *jx.Encoder) {
	writeJSONStatus(w, http.StatusOK, e)
}

func writeJSONStatus(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps a domain error to its HTTP status and stable kind. Errors
// with no mapping are logged and surfaced as a generic transient failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, msg := classifyError(err)
	if kind == kindTransient {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		msg = "temporarily unavailable"
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("kind")
	e.Str(kind)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSONStatus(w, status, &e)
}

func classifyError(err error) (status int, kind, msg string) {
	switch {
	case errors.Is(err, offer.ErrInvalidInput),
		errors.Is(err, merchant.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, kindInvalidInput, err.Error()

	case errors.Is(err, merchant.ErrUnauthorized):
		return http.StatusUnauthorized, kindUnauthorized, "missing or invalid X-Foody-Key"

	case errors.Is(err, offer.ErrForbidden), errors.Is(err, reservation.ErrForbidden):
		return http.StatusForbidden, kindForbidden, "not the owner"

	case errors.Is(err, offer.ErrNotFound),
		errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, merchant.ErrNotFound):
		return http.StatusNotFound, kindNotFound, "not found"

	case errors.Is(err, reservation.ErrUnavailable):
		return http.StatusConflict, kindUnavailable, "offer unavailable"

	case errors.Is(err, reservation.ErrAlreadyProcessed):
		return http.StatusConflict, kindAlreadyProcessed, "reservation already processed"

	case errors.Is(err, reservation.ErrExpired):
		return http.StatusGone, kindExpired, "reservation expired"

	default:
		return http.StatusServiceUnavailable, kindTransient, ""
	}
}
