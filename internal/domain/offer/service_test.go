package offer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodyhq/foody/internal/domain/pricing"
)

// --- Mock implementation ---

type mockOfferRepo struct {
	created    *Offer
	listed     []Offer
	listFilter ListFilter
	archived   bool
	unarchived bool
	err        error
}

func (m *mockOfferRepo) Create(_ context.Context, o *Offer) error {
	m.created = o
	return m.err
}

func (m *mockOfferRepo) GetByID(_ context.Context, _ string) (*Offer, error) {
	return nil, ErrNotFound
}

func (m *mockOfferRepo) ListByRestaurant(_ context.Context, _ string, filter ListFilter) ([]Offer, error) {
	m.listFilter = filter
	return m.listed, m.err
}

func (m *mockOfferRepo) ListPublic(_ context.Context, _ string, _ time.Time) ([]Offer, error) {
	return m.listed, m.err
}

func (m *mockOfferRepo) ClaimUnit(_ context.Context, _ string, _ time.Time) (*Offer, error) {
	return nil, ErrNotFound
}

func (m *mockOfferRepo) RestoreUnit(_ context.Context, _ string) error { return nil }

func (m *mockOfferRepo) Archive(_ context.Context, _, _ string, _ time.Time) error {
	m.archived = true
	return m.err
}

func (m *mockOfferRepo) Unarchive(_ context.Context, _, _ string) error {
	m.unarchived = true
	return m.err
}

// --- Helpers ---

var testClock = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockOfferRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testClock }
	return svc
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		RestaurantID:       "rest-1",
		Title:              "Surprise box",
		Description:        "Whatever is left from today",
		PriceCents:         500,
		OriginalPriceCents: 1500,
		QtyTotal:           5,
		ExpiresAt:          testClock.Add(3 * time.Hour),
	}
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	repo := &mockOfferRepo{}
	svc := newTestService(repo)

	o, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "rest-1", o.RestaurantID)
	assert.Equal(t, 5, o.QtyTotal)
	assert.Equal(t, 5, o.QtyLeft, "new offers start with full stock")
	assert.Nil(t, o.ArchivedAt)
	require.NotNil(t, repo.created)
	assert.Equal(t, o.ID, repo.created.ID)
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	svc := newTestService(&mockOfferRepo{})

	req := validCreateRequest()
	req.Title = "  Surprise box  "
	req.Description = " leftovers "

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Surprise box", o.Title)
	assert.Equal(t, "leftovers", o.Description)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{name: "empty title", mutate: func(r *CreateRequest) { r.Title = "   " }},
		{name: "overlong title", mutate: func(r *CreateRequest) { r.Title = strings.Repeat("x", 201) }},
		{name: "overlong multibyte title", mutate: func(r *CreateRequest) { r.Title = strings.Repeat("ü", 201) }},
		{name: "zero price", mutate: func(r *CreateRequest) { r.PriceCents = 0 }},
		{name: "negative price", mutate: func(r *CreateRequest) { r.PriceCents = -100 }},
		{name: "negative original price", mutate: func(r *CreateRequest) { r.OriginalPriceCents = -1 }},
		{name: "zero quantity", mutate: func(r *CreateRequest) { r.QtyTotal = 0 }},
		{name: "deadline in the past", mutate: func(r *CreateRequest) { r.ExpiresAt = testClock.Add(-time.Minute) }},
		{name: "deadline exactly now", mutate: func(r *CreateRequest) { r.ExpiresAt = testClock }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOfferRepo{}
			svc := newTestService(repo)

			req := validCreateRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, repo.created)
		})
	}
}

func TestCreate_MultibyteTitleCountedInRunes(t *testing.T) {
	repo := &mockOfferRepo{}
	svc := newTestService(repo)

	// 200 characters, 400 bytes. The limit counts characters.
	req := validCreateRequest()
	req.Title = strings.Repeat("ü", 200)

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.Title, o.Title)
}

func TestCreate_NoOriginalPriceAllowed(t *testing.T) {
	svc := newTestService(&mockOfferRepo{})

	req := validCreateRequest()
	req.OriginalPriceCents = 0

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, o.OriginalPriceCents)
}

// --- List ---

func TestList_PassesFilter(t *testing.T) {
	repo := &mockOfferRepo{}
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), "rest-1", FilterArchived)
	require.NoError(t, err)
	assert.Equal(t, FilterArchived, repo.listFilter)
}

func TestList_RejectsUnknownFilter(t *testing.T) {
	svc := newTestService(&mockOfferRepo{})

	_, err := svc.List(context.Background(), "rest-1", ListFilter("bogus"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

// --- Archive / Unarchive ---

func TestArchiveUnarchive(t *testing.T) {
	repo := &mockOfferRepo{}
	svc := newTestService(repo)

	require.NoError(t, svc.Archive(context.Background(), "o1", "rest-1"))
	assert.True(t, repo.archived)

	require.NoError(t, svc.Unarchive(context.Background(), "o1", "rest-1"))
	assert.True(t, repo.unarchived)
}

func TestArchive_ForbiddenPropagates(t *testing.T) {
	svc := newTestService(&mockOfferRepo{err: ErrForbidden})

	err := svc.Archive(context.Background(), "o1", "rest-2")
	require.ErrorIs(t, err, ErrForbidden)
}

// --- ListPublic ---

func TestListPublic_AttachesQuotes(t *testing.T) {
	repo := &mockOfferRepo{listed: []Offer{
		{
			ID:                 "o1",
			PriceCents:         500,
			OriginalPriceCents: 1000,
			ExpiresAt:          testClock.Add(20 * time.Minute),
		},
		{
			ID:         "o2",
			PriceCents: 400,
			ExpiresAt:  testClock.Add(20 * time.Minute),
		},
	}}
	svc := newTestService(repo)

	quoted, err := svc.ListPublic(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, quoted, 2)

	// 20 minutes out: deepest discount off the original price.
	assert.Equal(t, pricing.TierSeventyOff, quoted[0].Quote.Tier)
	assert.Equal(t, int64(300), quoted[0].Quote.PriceCents)

	// No original price reference: listed price applies regardless.
	assert.Equal(t, pricing.TierBase, quoted[1].Quote.Tier)
	assert.Equal(t, int64(400), quoted[1].Quote.PriceCents)
}

func TestAvailable(t *testing.T) {
	o := Offer{QtyLeft: 1, ExpiresAt: testClock.Add(time.Hour)}
	assert.True(t, o.Available(testClock))

	o.QtyLeft = 0
	assert.False(t, o.Available(testClock))

	o.QtyLeft = 1
	assert.False(t, o.Available(o.ExpiresAt))

	archived := testClock
	o.ArchivedAt = &archived
	assert.False(t, o.Available(testClock))
}
