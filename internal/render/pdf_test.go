package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		Type:     domain.DocumentInvoice,
		IssuedOn: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Gig: domain.Gig{
			ID: "1", Venue: "Vibe Club", City: "Colombo",
			Date: time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), Currency: "LKR",
		},
		Client:   &domain.Client{Name: "Roshan P.", Company: "Vibe Ent", Email: "roshan@vibe.lk"},
		Currency: "LKR",
		LineItems: []domain.LineItem{
			{ID: "a", SourceCatalogID: "eq1", Description: "Pioneer CDJ-3000 (Pair)", Quantity: 2, Rate: 2500000},
			{ID: "b", Description: "Travel Surcharge", Quantity: 1, Rate: 500000},
		},
		PerformanceFee: 15000000,
		Total:          20500000,
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewPDF(DefaultLetterhead())

	a, err := r.Render(sampleInput())
	require.NoError(t, err)
	b, err := r.Render(sampleInput())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(a, []byte("%PDF-")))
	assert.Equal(t, a, b)
}

func TestRenderDiffersWithContent(t *testing.T) {
	r := NewPDF(DefaultLetterhead())

	a, err := r.Render(sampleInput())
	require.NoError(t, err)

	in := sampleInput()
	in.LineItems[0].Quantity = 3
	in.Total += 2500000
	b, err := r.Render(in)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRecipientFallsBackToVenue(t *testing.T) {
	in := sampleInput()
	in.Client = nil
	assert.Equal(t, []string{"Vibe Club", "Colombo"}, recipient(in))

	in = sampleInput()
	assert.Equal(t, []string{"Roshan P.", "Vibe Ent", "roshan@vibe.lk"}, recipient(in))
}
