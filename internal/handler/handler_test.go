package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodyhq/foody/internal/domain/merchant"
	"github.com/foodyhq/foody/internal/domain/offer"
	"github.com/foodyhq/foody/internal/domain/reservation"
)

// --- In-memory stores ---

type memOfferRepo struct {
	mu   sync.Mutex
	byID map[string]*offer.Offer
}

func newMemOfferRepo() *memOfferRepo {
	return &memOfferRepo{byID: make(map[string]*offer.Offer)}
}

func (m *memOfferRepo) Create(_ context.Context, o *offer.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOfferRepo) GetByID(_ context.Context, id string) (*offer.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) ListByRestaurant(_ context.Context, restaurantID string, filter offer.ListFilter) ([]offer.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []offer.Offer
	for _, o := range m.byID {
		if o.RestaurantID != restaurantID {
			continue
		}
		switch filter {
		case offer.FilterActive:
			if o.ArchivedAt != nil {
				continue
			}
		case offer.FilterArchived:
			if o.ArchivedAt == nil {
				continue
			}
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOfferRepo) ListPublic(_ context.Context, restaurantID string, now time.Time) ([]offer.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []offer.Offer
	for _, o := range m.byID {
		if restaurantID != "" && o.RestaurantID != restaurantID {
			continue
		}
		if o.Available(now) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOfferRepo) ClaimUnit(_ context.Context, id string, now time.Time) (*offer.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	switch {
	case o.ArchivedAt != nil:
		return nil, offer.ErrArchived
	case !now.Before(o.ExpiresAt):
		return nil, offer.ErrExpired
	case o.QtyLeft <= 0:
		return nil, offer.ErrOutOfStock
	}
	o.QtyLeft--
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) RestoreUnit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.byID[id]; ok && o.QtyLeft < o.QtyTotal {
		o.QtyLeft++
	}
	return nil
}

func (m *memOfferRepo) Archive(_ context.Context, id, restaurantID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return offer.ErrNotFound
	}
	if o.RestaurantID != restaurantID {
		return offer.ErrForbidden
	}
	o.ArchivedAt = &now
	return nil
}

func (m *memOfferRepo) Unarchive(_ context.Context, id, restaurantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return offer.ErrNotFound
	}
	if o.RestaurantID != restaurantID {
		return offer.ErrForbidden
	}
	o.ArchivedAt = nil
	return nil
}

func (m *memOfferRepo) originalPrice(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].OriginalPriceCents
}

type memReservationRepo struct {
	mu     sync.Mutex
	byCode map[string]*reservation.Reservation
	byID   map[string]*reservation.Reservation
	offers *memOfferRepo
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{
		byCode: make(map[string]*reservation.Reservation),
		byID:   make(map[string]*reservation.Reservation),
	}
}

func (m *memReservationRepo) Create(_ context.Context, r *reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byCode[r.Code]; exists {
		return reservation.ErrCodeConflict
	}
	cp := *r
	m.byCode[r.Code] = &cp
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReservationRepo) GetByCode(_ context.Context, code string) (*reservation.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byCode[code]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReservationRepo) Transition(_ context.Context, id string, to reservation.Status, redeemedAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return false, reservation.ErrNotFound
	}
	if r.Status != reservation.StatusReserved {
		return false, nil
	}
	r.Status = to
	r.RedeemedAt = redeemedAt
	return true, nil
}

func (m *memReservationRepo) CountByRestaurant(_ context.Context, restaurantID string) (*reservation.StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c reservation.StatusCounts
	for _, r := range m.byID {
		if r.RestaurantID != restaurantID {
			continue
		}
		switch r.Status {
		case reservation.StatusReserved:
			c.Reserved++
		case reservation.StatusRedeemed:
			c.Redeemed++
			c.RevenueCents += r.PriceCentsEffective
			if orig := m.offers.originalPrice(r.OfferID); orig > 0 {
				if d := orig - r.PriceCentsEffective; d > 0 {
					c.SavedCents += d
				}
			}
		case reservation.StatusCanceled:
			c.Canceled++
		case reservation.StatusExpired:
			c.Expired++
		}
	}
	return &c, nil
}

type memMerchantRepo struct {
	mu          sync.Mutex
	restaurants map[string]*merchant.Restaurant
	keys        map[string]*merchant.APIKeyRecord
}

func newMemMerchantRepo() *memMerchantRepo {
	return &memMerchantRepo{
		restaurants: make(map[string]*merchant.Restaurant),
		keys:        make(map[string]*merchant.APIKeyRecord),
	}
}

func (m *memMerchantRepo) CreateWithKey(_ context.Context, r *merchant.Restaurant, keyHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[r.ID] = r
	m.keys[r.ID] = &merchant.APIKeyRecord{RestaurantID: r.ID, KeyHash: keyHash}
	return nil
}

func (m *memMerchantRepo) GetRestaurant(_ context.Context, id string) (*merchant.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, merchant.ErrNotFound
	}
	return r, nil
}

func (m *memMerchantRepo) GetKey(_ context.Context, restaurantID string) (*merchant.APIKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[restaurantID]
	if !ok {
		return nil, merchant.ErrNotFound
	}
	return k, nil
}

// --- Test harness ---

type testAPI struct {
	router http.Handler
	offers *memOfferRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	offers := newMemOfferRepo()
	reservations := newMemReservationRepo()
	reservations.offers = offers

	h, err := New(
		merchant.NewService(newMemMerchantRepo(), []byte("test-pepper")),
		offer.NewService(offers),
		reservation.NewService(offers, reservations, reservation.NewRandomCodeIssuer()),
	)
	require.NoError(t, err)

	return &testAPI{router: h.Routes(), offers: offers}
}

func (a *testAPI) do(t *testing.T, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var payload map[string]any
	if b := w.Body.Bytes(); len(b) > 0 && b[0] == '{' {
		require.NoError(t, json.Unmarshal(b, &payload))
	}
	return w, payload
}

// register creates a restaurant and returns (id, key, auth header).
func (a *testAPI) register(t *testing.T, title string) (string, map[string]string) {
	t.Helper()

	w, resp := a.do(t, http.MethodPost, "/api/v1/merchant/register", `{"title":"`+title+`"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	id := resp["restaurant_id"].(string)
	key := resp["api_key"].(string)
	return id, map[string]string{apiKeyHeader: key}
}

func (a *testAPI) createOffer(t *testing.T, restaurantID string, auth map[string]string, body string) string {
	t.Helper()

	w, resp := a.do(t, http.MethodPost, "/api/v1/merchant/offers?restaurant_id="+restaurantID, body, auth)
	require.Equal(t, http.StatusCreated, w.Code, "create offer: %s", w.Body.String())
	return resp["id"].(string)
}

func futureRFC3339(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339)
}

const offerBodyTemplate = `{
	"title": "Surprise box",
	"description": "Whatever is left",
	"price_cents": 500,
	"original_price_cents": 1500,
	"qty_total": 2,
	"expires_at": "%s"
}`

func defaultOfferBody(expiresIn time.Duration) string {
	return strings.Replace(offerBodyTemplate, "%s", futureRFC3339(expiresIn), 1)
}

// --- Registration and authentication ---

func TestRegisterMerchant(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/register", `{"title":"Corner Bakery"}`, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, resp["restaurant_id"])
	assert.True(t, strings.HasPrefix(resp["api_key"].(string), "KEY_"))
}

func TestRegisterMerchant_EmptyTitle(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/register", `{"title":"  "}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", resp["kind"])
}

func TestRegisterMerchant_UnknownField(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/register", `{"title":"ok","surprise":1}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", resp["kind"])
}

func TestMerchantRoutes_MissingKey(t *testing.T) {
	api := newTestAPI(t)
	id, _ := api.register(t, "Corner Bakery")

	w, resp := api.do(t, http.MethodGet, "/api/v1/merchant/offers?restaurant_id="+id, "", nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", resp["kind"])
}

func TestMerchantRoutes_WrongKey(t *testing.T) {
	api := newTestAPI(t)
	id, _ := api.register(t, "Corner Bakery")

	w, _ := api.do(t, http.MethodGet, "/api/v1/merchant/offers?restaurant_id="+id, "",
		map[string]string{apiKeyHeader: "KEY_00000000000000000000000000000000"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMerchantRoutes_KeyOfOtherRestaurant(t *testing.T) {
	api := newTestAPI(t)
	idA, _ := api.register(t, "Bakery A")
	_, authB := api.register(t, "Bakery B")

	// B's key does not open A's account.
	w, _ := api.do(t, http.MethodGet, "/api/v1/merchant/offers?restaurant_id="+idA, "", authB)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Offers ---

func TestCreateAndListOffers(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	w, _ := api.do(t, http.MethodGet, "/api/v1/merchant/offers?restaurant_id="+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)

	var offers []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, offerID, offers[0]["id"])
	assert.EqualValues(t, 2, offers[0]["qty_left"])
}

func TestCreateOffer_InvalidBody(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"title":`},
		{name: "unknown field", body: `{"title":"x","bogus":true,"price_cents":1,"qty_total":1,"expires_at":"` + futureRFC3339(time.Hour) + `"}`},
		{name: "missing expires_at", body: `{"title":"x","price_cents":1,"qty_total":1}`},
		{name: "non-numeric price", body: `{"title":"x","price_cents":"five","qty_total":1,"expires_at":"` + futureRFC3339(time.Hour) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/offers?restaurant_id="+id, tt.body, auth)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_input", resp["kind"])
		})
	}
}

func TestPublicOffers_QuotedPrices(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	// 20 minutes to deadline: the -70% tier quotes 30% of the original.
	api.createOffer(t, id, auth, defaultOfferBody(20*time.Minute))

	w, _ := api.do(t, http.MethodGet, "/api/v1/offers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var offers []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, "-70%", offers[0]["tier"])
	assert.EqualValues(t, 450, offers[0]["quoted_price_cents"])
}

func TestArchivedOfferHiddenFromPublic(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	w, resp := api.do(t, http.MethodDelete, "/api/v1/merchant/offers/"+offerID+"?restaurant_id="+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])

	w, _ = api.do(t, http.MethodGet, "/api/v1/offers", "", nil)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	// Reserving an archived offer looks like a missing offer.
	w, resp = api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp["kind"])

	// Restore brings it back.
	w, _ = api.do(t, http.MethodPost, "/api/v1/merchant/offers/"+offerID+"/restore?restaurant_id="+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestArchiveOffer_NotOwner(t *testing.T) {
	api := newTestAPI(t)
	idA, authA := api.register(t, "Bakery A")
	idB, authB := api.register(t, "Bakery B")
	offerID := api.createOffer(t, idA, authA, defaultOfferBody(3*time.Hour))

	w, resp := api.do(t, http.MethodDelete, "/api/v1/merchant/offers/"+offerID+"?restaurant_id="+idB, "", authB)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", resp["kind"])
}

// --- Reserve ---

func TestReserveOffer(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	w, resp := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "reserved", resp["status"])
	assert.True(t, strings.HasPrefix(resp["code"].(string), "FDY-"))
	assert.EqualValues(t, 1, resp["qty"])
}

func TestReserveOffer_NotFound(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(t, http.MethodPost, "/api/v1/offers/missing/reserve", "", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp["kind"])
}

func TestReserveOffer_SoldOut(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	// qty_total is 2.
	for range 2 {
		w, _ := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "unavailable", resp["kind"])
}

func TestReserveOffer_Expired(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(time.Hour))

	// Push the deadline into the past underneath the service.
	api.offers.mu.Lock()
	api.offers.byID[offerID].ExpiresAt = time.Now().Add(-time.Minute)
	api.offers.mu.Unlock()

	w, resp := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "unavailable", resp["kind"])
}

func TestGetReservation(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	_, created := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	code := created["code"].(string)

	w, resp := api.do(t, http.MethodGet, "/api/v1/reservations/"+code, "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["reservation_id"], resp["reservation_id"])
	assert.Equal(t, "reserved", resp["status"])
	assert.Nil(t, resp["redeemed_at"])
}

func TestGetReservation_UnknownCode(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(t, http.MethodGet, "/api/v1/reservations/FDY-UNKNOWN", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// --- Redeem ---

func TestRedeemFlow(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, defaultOfferBody(3*time.Hour))

	_, created := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	code := created["code"].(string)

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+id,
		`{"code":"`+code+`"}`, auth)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["reservation_id"], resp["reservation_id"])
	assert.NotEmpty(t, resp["redeemed_at"])

	// Second attempt on the same code.
	w, resp = api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+id,
		`{"code":"`+code+`"}`, auth)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_processed", resp["kind"])
}

func TestRedeem_ForeignReservation(t *testing.T) {
	api := newTestAPI(t)
	idA, authA := api.register(t, "Bakery A")
	idB, authB := api.register(t, "Bakery B")
	offerID := api.createOffer(t, idA, authA, defaultOfferBody(3*time.Hour))

	_, created := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
	code := created["code"].(string)

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+idB,
		`{"code":"`+code+`"}`, authB)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", resp["kind"])
}

func TestRedeem_UnknownCode(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+id,
		`{"code":"FDY-UNKNOWN"}`, auth)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp["kind"])
}

func TestRedeem_MissingCode(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	w, resp := api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+id, `{}`, auth)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", resp["kind"])
}

// --- KPI ---

func TestMerchantKPI(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")
	offerID := api.createOffer(t, id, auth, `{
		"title": "Surprise box",
		"price_cents": 600,
		"original_price_cents": 1000,
		"qty_total": 5,
		"expires_at": "`+futureRFC3339(3*time.Hour)+`"
	}`)

	var codes []string
	for range 3 {
		_, created := api.do(t, http.MethodPost, "/api/v1/offers/"+offerID+"/reserve", "", nil)
		codes = append(codes, created["code"].(string))
	}
	for _, code := range codes[:2] {
		w, _ := api.do(t, http.MethodPost, "/api/v1/merchant/redeem?restaurant_id="+id,
			`{"code":"`+code+`"}`, auth)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := api.do(t, http.MethodGet, "/api/v1/merchant/kpi?restaurant_id="+id, "", auth)
	require.Equal(t, http.StatusOK, w.Code)

	// reserved counts every reservation placed, not just the pending ones.
	assert.EqualValues(t, 3, resp["reserved"])
	assert.EqualValues(t, 2, resp["redeemed"])
	assert.EqualValues(t, 0, resp["canceled"])
	assert.EqualValues(t, 0, resp["expired"])
	assert.InDelta(t, 0.667, resp["redemption_rate"].(float64), 0.0001)
	// Both redemptions were quoted at the base tier (600 cents each),
	// each saving 400 against the 1000-cent original.
	assert.EqualValues(t, 1200, resp["revenue_cents"])
	assert.EqualValues(t, 800, resp["saved_cents"])
}

func TestMerchantKPI_Empty(t *testing.T) {
	api := newTestAPI(t)
	id, auth := api.register(t, "Corner Bakery")

	w, resp := api.do(t, http.MethodGet, "/api/v1/merchant/kpi?restaurant_id="+id, "", auth)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp["reserved"])
	assert.EqualValues(t, 0, resp["redemption_rate"])
}
