package clients

import (
	"context"
	"testing"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/repository"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	clients map[string]domain.Client
}

func (f *fakeStore) Create(_ context.Context, c domain.Client) (domain.Client, error) {
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (domain.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return domain.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.Client, error) {
	out := []domain.Client{}
	for _, c := range f.clients {
		out = append(out, c)
	}
	return out, nil
}

func TestCreateAndGet(t *testing.T) {
	svc := New(&fakeStore{clients: map[string]domain.Client{}})
	ctx := context.Background()

	c, err := svc.Create(ctx, NewClient{
		Name:     "Lim Wei",
		Company:  "Zouk Group",
		Email:    "wei@zouk.sg",
		Phone:    "+65 6738 2988",
		Category: "Venue",
	})
	require.NoError(t, err)
	assert.Equal(t, "+6567382988", c.Phone)
	assert.Equal(t, domain.ClientVenue, c.Category)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := New(&fakeStore{clients: map[string]domain.Client{}})

	_, err := svc.Create(context.Background(), NewClient{Name: "X", Email: "not-an-email", Category: "Friend"})
	require.ErrorIs(t, err, validation.ErrInvalid)

	var verr validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "category")
}
