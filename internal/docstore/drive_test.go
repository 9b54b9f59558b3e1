package docstore

import (
	"context"
	"testing"

	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnconfiguredDrive(t *testing.T) {
	d, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, d.Configured())

	_, err = d.Upload(context.Background(), []byte("%PDF"), "q.pdf")
	assert.ErrorIs(t, err, quote.ErrStoreUnavailable)

	files, err := d.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, files)
}
