package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	gigs := GigRows([]domain.Gig{{
		ID: "1", Venue: "Vibe Club", City: "Colombo", Date: time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime: "22:00", Status: domain.GigConfirmed, Fee: 15000000, Currency: "LKR",
	}})
	require.Len(t, gigs, 2)
	assert.Equal(t, "Notes", gigs[0][9])
	assert.Equal(t, []any{"1", "Vibe Club", "Colombo", "2026-11-20", "22:00", "", "Confirmed", "150000.00", "LKR", ""}, gigs[1])

	exp := ExpenseRows(nil)
	assert.Len(t, exp, 1)
	assert.Equal(t, "Gig ID", exp[0][6])
}

func TestExportWithoutConfiguration(t *testing.T) {
	e, err := New(context.Background(), Config{SpreadsheetID: "abc"})
	require.NoError(t, err)

	err = e.Export(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
