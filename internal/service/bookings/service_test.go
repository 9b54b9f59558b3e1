package bookings

import (
	"context"
	"testing"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/kirinyoku/tourdesk/internal/repository"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGigStore struct {
	gigs    map[string]domain.Gig
	creates int
	clients map[string]bool
}

func newFakeGigStore() *fakeGigStore {
	return &fakeGigStore{gigs: map[string]domain.Gig{}, clients: map[string]bool{"c1": true}}
}

func (f *fakeGigStore) Create(_ context.Context, g domain.Gig) (domain.Gig, error) {
	f.creates++
	if g.ClientID != "" && !f.clients[g.ClientID] {
		return domain.Gig{}, repository.ErrInvalidRef
	}
	f.gigs[g.ID] = g
	return g, nil
}

func (f *fakeGigStore) Get(_ context.Context, id string) (domain.Gig, error) {
	g, ok := f.gigs[id]
	if !ok {
		return domain.Gig{}, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeGigStore) List(_ context.Context) ([]domain.Gig, error) {
	out := make([]domain.Gig, 0, len(f.gigs))
	for _, g := range f.gigs {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGigStore) Update(_ context.Context, id string, u domain.GigUpdate) (domain.Gig, error) {
	g, ok := f.gigs[id]
	if !ok {
		return domain.Gig{}, repository.ErrNotFound
	}
	if u.Venue != nil {
		g.Venue = *u.Venue
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
	if u.Fee != nil {
		g.Fee = *u.Fee
	}
	if u.Currency != nil {
		g.Currency = *u.Currency
	}
	f.gigs[id] = g
	return g, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateGigs(context.Context) error {
	c.calls++
	return nil
}

func TestCreateGigDefaults(t *testing.T) {
	store := newFakeGigStore()
	inv := &countingInvalidator{}
	svc := New(store, inv, nil, Config{DefaultCurrency: "LKR"})

	g, err := svc.CreateGig(context.Background(), NewGig{
		Venue: "Vibe Club",
		City:  "Colombo",
		Date:  "2026-12-31",
		Fee:   decimal.RequireFromString("150000"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, domain.GigPending, g.Status)
	assert.Equal(t, "LKR", g.Currency)
	assert.Equal(t, money.Amount(15000000), g.Fee)
	assert.Equal(t, 1, inv.calls)
}

func TestCreateGigValidation(t *testing.T) {
	store := newFakeGigStore()
	svc := New(store, nil, nil, Config{})

	_, err := svc.CreateGig(context.Background(), NewGig{
		Venue:     "Vibe Club",
		Date:      "31/12/2026",
		StartTime: "late",
		Status:    "Maybe",
		Currency:  "usd",
	})
	require.ErrorIs(t, err, validation.ErrInvalid)

	var verr validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "city")
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "start_time")
	assert.Contains(t, verr.Fields, "status")
	assert.Zero(t, store.creates)

	_, err = svc.CreateGig(context.Background(), NewGig{
		Venue: "Vibe Club", City: "Colombo", Date: "2026-12-31",
		Fee: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.CreateGig(context.Background(), NewGig{
		Venue: "Vibe Club", City: "Colombo", Date: "2026-12-31",
		Fee: decimal.RequireFromString("10.001"), Currency: "USD",
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestCreateGigUnknownClient(t *testing.T) {
	svc := New(newFakeGigStore(), nil, nil, Config{})

	_, err := svc.CreateGig(context.Background(), NewGig{
		Venue: "Fabric", City: "London", Date: "2026-06-05", Currency: "GBP", ClientID: "nope",
	})
	var verr validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client_id")
}

func TestGetGigNotFound(t *testing.T) {
	svc := New(newFakeGigStore(), nil, nil, Config{})

	_, err := svc.GetGig(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGigNotFound)
}

func TestUpdateGig(t *testing.T) {
	store := newFakeGigStore()
	store.gigs["g1"] = domain.Gig{ID: "g1", Venue: "ZOUK", Status: domain.GigPending, Fee: 800000, Currency: "USD"}
	svc := New(store, nil, nil, Config{})

	status := "Confirmed"
	fee := decimal.RequireFromString("9000.50")
	g, err := svc.UpdateGig(context.Background(), "g1", GigPatch{Status: &status, Fee: &fee})
	require.NoError(t, err)
	assert.Equal(t, domain.GigConfirmed, g.Status)
	assert.Equal(t, money.Amount(900050), g.Fee)

	bad := "Done"
	_, err = svc.UpdateGig(context.Background(), "g1", GigPatch{Status: &bad})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	empty := ""
	_, err = svc.UpdateGig(context.Background(), "g1", GigPatch{Venue: &empty})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.UpdateGig(context.Background(), "nope", GigPatch{Status: &status})
	assert.ErrorIs(t, err, ErrGigNotFound)
}

func TestUpdateGigCurrencyKeepsMajorValue(t *testing.T) {
	store := newFakeGigStore()
	store.gigs["g1"] = domain.Gig{ID: "g1", Fee: 450000, Currency: "USD"}
	svc := New(store, nil, nil, Config{})

	jpy := "jpy"
	g, err := svc.UpdateGig(context.Background(), "g1", GigPatch{Currency: &jpy})
	require.NoError(t, err)
	assert.Equal(t, "JPY", g.Currency)
	assert.Equal(t, money.Amount(4500), g.Fee)
}

func TestListGigs(t *testing.T) {
	store := newFakeGigStore()
	store.gigs["g1"] = domain.Gig{ID: "g1"}
	svc := New(store, nil, nil, Config{})

	gigs, err := svc.ListGigs(context.Background())
	require.NoError(t, err)
	assert.Len(t, gigs, 1)
}

