package catalog

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items     []domain.CatalogItem
	listCalls int
}

func (f *fakeStore) Create(_ context.Context, it domain.CatalogItem) (domain.CatalogItem, error) {
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (domain.CatalogItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.CatalogItem{}, repository.ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]domain.CatalogItem, error) {
	f.listCalls++
	return append([]domain.CatalogItem(nil), f.items...), nil
}

func newCachedService(t *testing.T, store Store) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(store, redisrepo.New(client), Config{DefaultCurrency: "LKR"})
}

func TestListIsCachedUntilAdd(t *testing.T) {
	store := &fakeStore{items: []domain.CatalogItem{{ID: "eq1", Name: "Pioneer CDJ-3000 (Pair)", Category: domain.EquipmentDJ, DailyRate: 2500000, Currency: "LKR"}}}
	svc := newCachedService(t, store)
	ctx := context.Background()

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)

	_, err = svc.Add(ctx, NewItem{Name: "Fog Machine", Category: "Lighting", DailyRate: decimal.RequireFromString("3500")})
	require.NoError(t, err)

	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, store.listCalls)
}

func TestAdd(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, nil, Config{DefaultCurrency: "LKR"})

	it, err := svc.Add(context.Background(), NewItem{Name: " Fog Machine ", Category: "Lighting", DailyRate: decimal.RequireFromString("3500.50")})
	require.NoError(t, err)
	assert.Equal(t, "Fog Machine", it.Name)
	assert.Equal(t, "LKR", it.Currency)
	assert.Equal(t, money.Amount(350050), it.DailyRate)

	_, err = svc.Add(context.Background(), NewItem{Name: "Fog", Category: "Smoke", DailyRate: decimal.RequireFromString("1")})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Add(context.Background(), NewItem{Name: "Fog", Category: "Lighting", DailyRate: decimal.Zero})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Len(t, store.items, 1)
}

func TestGetNotFound(t *testing.T) {
	svc := New(&fakeStore{}, nil, Config{})
	_, err := svc.Get(context.Background(), "eq99")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
