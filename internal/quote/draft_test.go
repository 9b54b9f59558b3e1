package quote

import (
	"math"
	"testing"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cdjPair = domain.CatalogItem{ID: "eq1", Name: "Pioneer CDJ-3000 (Pair)", Category: domain.EquipmentDJ, DailyRate: 25000, Currency: "LKR"}
	mixer   = domain.CatalogItem{ID: "eq2", Name: "Pioneer DJM-V10 Mixer", Category: domain.EquipmentDJ, DailyRate: 18000, Currency: "LKR"}
)

func testGig() domain.Gig {
	return domain.Gig{
		ID:       "g1",
		Venue:    "Cloud Nine Lounge",
		City:     "Colombo",
		Date:     time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		Status:   domain.GigConfirmed,
		Fee:      150000,
		Currency: "LKR",
		ClientID: "c1",
	}
}

func TestAddCatalogItemMergesRepeatedAdds(t *testing.T) {
	d := NewDraft(testGig(), "")

	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(mixer))

	require.Len(t, d.LineItems, 2)
	assert.Equal(t, "eq1", d.LineItems[0].SourceCatalogID)
	assert.Equal(t, 2, d.LineItems[0].Quantity)
	assert.Equal(t, money.Amount(25000), d.LineItems[0].Rate)
	assert.Equal(t, 1, d.LineItems[1].Quantity)
	assert.Equal(t, money.Amount(68000), d.ComputeTotals().LineItemsSubtotal)
}

func TestAddCatalogItemCopiesRate(t *testing.T) {
	d := NewDraft(testGig(), "")
	item := cdjPair
	require.NoError(t, d.AddCatalogItem(item))

	item.DailyRate = 99999
	assert.Equal(t, money.Amount(25000), d.LineItems[0].Rate)
}

func TestAddCatalogItemRejectsOtherCurrency(t *testing.T) {
	d := NewDraft(testGig(), "")
	usd := cdjPair
	usd.Currency = "USD"

	err := d.AddCatalogItem(usd)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.Empty(t, d.LineItems)
}

func TestAddCustomLineItemValidation(t *testing.T) {
	d := NewDraft(testGig(), "")

	_, err := d.AddCustomLineItem("   ", 5000, "")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	_, err = d.AddCustomLineItem("Transport", 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = d.AddCustomLineItem("Transport", -10, "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, d.LineItems)

	li, err := d.AddCustomLineItem(" Transport ", 5000, "lkr")
	require.NoError(t, err)
	assert.Equal(t, "Transport", li.Description)
	assert.Equal(t, 1, li.Quantity)
	assert.Empty(t, li.SourceCatalogID)
}

func TestCustomItemsNeverMerge(t *testing.T) {
	d := NewDraft(testGig(), "")
	_, err := d.AddCustomLineItem("Transport", 5000, "")
	require.NoError(t, err)
	_, err = d.AddCustomLineItem("Transport", 5000, "")
	require.NoError(t, err)

	assert.Len(t, d.LineItems, 2)
}

func TestSetQuantityClampsToOne(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	id := d.LineItems[0].ID

	require.NoError(t, d.SetQuantity(id, 4))
	assert.Equal(t, 4, d.LineItems[0].Quantity)

	require.NoError(t, d.SetQuantity(id, 0))
	assert.Equal(t, 1, d.LineItems[0].Quantity)

	require.NoError(t, d.SetQuantity(id, -3))
	assert.Equal(t, 1, d.LineItems[0].Quantity)

	err := d.SetQuantity("missing", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf LineItemNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestSetQuantityRejectsOverflow(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(mixer))
	first, second := d.LineItems[0].ID, d.LineItems[1].ID

	err := d.SetQuantity(first, math.MaxInt64/25000+1)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Equal(t, 1, d.LineItems[0].Quantity)

	// each line fits on its own, the sum does not
	require.NoError(t, d.SetQuantity(first, math.MaxInt64/25000-1))
	err = d.SetQuantity(second, 2)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, d.LineItems[1].Quantity)

	totals, err := d.Totals()
	require.NoError(t, err)
	assert.Equal(t, money.Amount((math.MaxInt64/25000-1)*25000+18000), totals.GrandTotal)
	assert.Equal(t, totals.GrandTotal, d.ComputeTotals().GrandTotal)
}

func TestPerformanceFeeRejectsOverflow(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.SetQuantity(d.LineItems[0].ID, math.MaxInt64/25000))

	huge := money.Amount(math.MaxInt64 - 1)
	err := d.SetPerformanceFee(true, &huge)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, d.IncludePerformanceFee)
	assert.Nil(t, d.PerformanceFeeOverride)

	err = d.AddCatalogItem(cdjPair)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int(math.MaxInt64/25000), d.LineItems[0].Quantity)
}

func TestRemoveLineItemIsIdempotent(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(mixer))
	id := d.LineItems[0].ID

	d.RemoveLineItem(id)
	d.RemoveLineItem(id)
	d.RemoveLineItem("never-existed")

	require.Len(t, d.LineItems, 1)
	assert.Equal(t, "eq2", d.LineItems[0].SourceCatalogID)
}

func TestPerformanceFeeSeedsFromGigOnce(t *testing.T) {
	d := NewDraft(testGig(), "")

	require.NoError(t, d.SetPerformanceFee(true, nil))
	require.NotNil(t, d.PerformanceFeeOverride)
	assert.Equal(t, money.Amount(150000), *d.PerformanceFeeOverride)

	custom := money.Amount(120000)
	require.NoError(t, d.SetPerformanceFee(true, &custom))
	require.NoError(t, d.SetPerformanceFee(false, nil))
	require.NoError(t, d.SetPerformanceFee(true, nil))

	assert.Equal(t, money.Amount(120000), *d.PerformanceFeeOverride)
	assert.Equal(t, money.Amount(120000), d.ComputeTotals().PerformanceFeeAmount)
}

func TestPerformanceFeeRejectsNegative(t *testing.T) {
	d := NewDraft(testGig(), "")
	neg := money.Amount(-1)

	err := d.SetPerformanceFee(true, &neg)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, d.IncludePerformanceFee)
	assert.Nil(t, d.PerformanceFeeOverride)
}

func TestComputeTotals(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(cdjPair))
	_, err := d.AddCustomLineItem("Transport", 5000, "")
	require.NoError(t, err)

	totals := d.ComputeTotals()
	assert.Equal(t, money.Amount(55000), totals.LineItemsSubtotal)
	assert.Zero(t, totals.PerformanceFeeAmount)
	assert.Equal(t, money.Amount(55000), totals.GrandTotal)

	require.NoError(t, d.SetPerformanceFee(true, nil))
	totals = d.ComputeTotals()
	assert.Equal(t, money.Amount(150000), totals.PerformanceFeeAmount)
	assert.Equal(t, money.Amount(205000), totals.GrandTotal)
	assert.Equal(t, totals.LineItemsSubtotal+totals.PerformanceFeeAmount, totals.GrandTotal)
}

func TestDraftFromDocumentRestoresOverride(t *testing.T) {
	doc := domain.IssuedDocument{
		ID:                    "doc1",
		GigID:                 "g1",
		Type:                  domain.DocumentInvoice,
		Currency:              "LKR",
		LineItems:             []domain.LineItem{{ID: "li1", SourceCatalogID: "eq1", Description: "CDJ", Quantity: 2, Rate: 25000}},
		IncludePerformanceFee: true,
		PerformanceFee:        100000,
		TotalAmount:           150000,
	}

	d := DraftFromDocument(testGig(), doc)

	assert.Equal(t, "doc1", d.DocumentID)
	assert.Equal(t, domain.DocumentInvoice, d.DocumentType)
	assert.Equal(t, domain.DocumentStatus(""), d.DocumentStatus)
	require.NotNil(t, d.PerformanceFeeOverride)
	assert.Equal(t, money.Amount(100000), *d.PerformanceFeeOverride)
	assert.Equal(t, doc.TotalAmount, d.ComputeTotals().GrandTotal)

	d.LineItems[0].Quantity = 5
	assert.Equal(t, 2, doc.LineItems[0].Quantity)
}

func TestSnapshotIsIndependent(t *testing.T) {
	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))

	snap := d.Snapshot()
	require.NoError(t, d.SetQuantity(d.LineItems[0].ID, 7))
	d.RemoveLineItem(d.LineItems[0].ID)

	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].Quantity)
}
