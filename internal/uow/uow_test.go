package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	postgres "github.com/kirinyoku/tourdesk/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	commitErr error
}

func (r fakeRunner) RunTx(ctx context.Context, _ *pgx.TxOptions, fn func(ctx context.Context, tx postgres.DB) error) error {
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return r.commitErr
}

func TestHooksRunAfterCommit(t *testing.T) {
	var order []string

	err := NewUoW(fakeRunner{}).Do(context.Background(), func(_ context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(func(context.Context) { order = append(order, "first") })
		after(func(context.Context) { order = append(order, "second") })
		order = append(order, "body")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"body", "first", "second"}, order)
}

func TestHooksSkippedOnFailure(t *testing.T) {
	ran := false
	hook := func(context.Context) { ran = true }

	err := NewUoW(fakeRunner{}).Do(context.Background(), func(_ context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(hook)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.False(t, ran)

	err = NewUoW(fakeRunner{commitErr: errors.New("commit failed")}).Do(context.Background(), func(_ context.Context, _ postgres.DB, after func(AfterCommit)) error {
		after(hook)
		return nil
	})
	require.Error(t, err)
	assert.False(t, ran)
}
