package ledger

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

type fakeExpenses struct {
	items []domain.Expense
}

func (f *fakeExpenses) Create(_ context.Context, e domain.Expense) (domain.Expense, error) {
	if e.GigID == "ghost" {
		return domain.Expense{}, repository.ErrInvalidRef
	}
	f.items = append(f.items, e)
	return e, nil
}

func (f *fakeExpenses) List(_ context.Context) ([]domain.Expense, error) {
	return f.items, nil
}

type fakeGigs []domain.Gig

func (f fakeGigs) List(_ context.Context) ([]domain.Gig, error) { return f, nil }

func TestSummarizeGroupsByCurrency(t *testing.T) {
	gigs := []domain.Gig{
		{ID: "1", Status: domain.GigConfirmed, Fee: 15000000, Currency: "LKR"},
		{ID: "2", Status: domain.GigConfirmed, Fee: 1800000, Currency: "GBP"},
		{ID: "3", Status: domain.GigPending, Fee: 450000, Currency: "USD"},
		{ID: "4", Status: domain.GigCanceled, Fee: 200000, Currency: "GBP"},
		{ID: "6", Status: domain.GigConfirmed, Fee: 8500000, Currency: "LKR"},
	}
	expenses := []domain.Expense{
		{Amount: 85000, Currency: "GBP"},
		{Amount: 1500000, Currency: "LKR"},
		{Amount: 4500, Currency: "USD"},
	}

	got := Summarize(gigs, expenses)
	require.Len(t, got, 3)

	assert.Equal(t, domain.CurrencyTotals{Currency: "GBP", Revenue: 1800000, Expenses: 85000, Net: 1715000}, got[0])
	assert.Equal(t, domain.CurrencyTotals{Currency: "LKR", Revenue: 23500000, Expenses: 1500000, Net: 22000000}, got[1])
	assert.Equal(t, domain.CurrencyTotals{Currency: "USD", Revenue: 0, Expenses: 4500, Net: -4500}, got[2])
}

func TestAddExpense(t *testing.T) {
	store := &fakeExpenses{}
	svc := New(store, fakeGigs{}, nil, Config{DefaultCurrency: "LKR"})
	ctx := context.Background()

	e, err := svc.AddExpense(ctx, NewExpense{
		Date:        "2026-05-15",
		Category:    "Travel",
		Description: "Manchester Flight",
		Amount:      decimal.RequireFromString("850"),
		Currency:    "gbp",
		GigID:       "2",
	})
	require.NoError(t, err)
	assert.Equal(t, money.Amount(85000), e.Amount)
	assert.Equal(t, "GBP", e.Currency)

	_, err = svc.AddExpense(ctx, NewExpense{Date: "2026-05-15", Category: "Snacks", Description: "x", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.AddExpense(ctx, NewExpense{Date: "2026-05-15", Category: "Gear", Description: "x", Amount: decimal.Zero})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.AddExpense(ctx, NewExpense{Date: "2026-05-15", Category: "Gear", Description: "x", Amount: decimal.NewFromInt(1), GigID: "ghost"})
	var verr validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "gig_id")

	assert.Len(t, store.items, 1)
}

func TestSummaryWithoutCache(t *testing.T) {
	store := &fakeExpenses{items: []domain.Expense{{Amount: 100, Currency: "USD"}}}
	svc := New(store, fakeGigs{{Status: domain.GigConfirmed, Fee: 1000, Currency: "USD"}}, nil, Config{})

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, money.Amount(900), got[0].Net)
}
