package handler

import (
	"context"
	"net/http"
)

// apiKeyHeader carries the merchant credential; restaurantIDParam names the
// restaurant the credential must belong to.
const (
	apiKeyHeader      = "X-Foody-Key"
	restaurantIDParam = "restaurant_id"
)

// restaurantKey is the context key for the authenticated restaurant id.
type restaurantKey struct{}

// restaurantFromContext extracts the authenticated restaurant id set by
// requireAPIKey.
func restaurantFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(restaurantKey{}).(string); ok {
		return id
	}
	return ""
}

// requireAPIKey authenticates merchant requests: the restaurant_id query
// parameter plus the X-Foody-Key header must match a stored credential.
// On success the restaurant id is stored in the request context.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restaurantID := r.URL.Query().Get(restaurantIDParam)
		key := r.Header.Get(apiKeyHeader)

		if err := h.merchants.Authenticate(r.Context(), restaurantID, key); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), restaurantKey{}, restaurantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
