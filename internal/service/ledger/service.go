package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/shopspring/decimal"
)

type ExpenseStore interface {
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)
	List(ctx context.Context) ([]domain.Expense, error)
}

type GigLister interface {
	List(ctx context.Context) ([]domain.Gig, error)
}

type Config struct {
	DefaultCurrency string
	SummaryTTL      time.Duration
}

type Service struct {
	expenses ExpenseStore
	gigs     GigLister
	cache    *redisrepo.Cache
	cfg      Config
}

// New wires the expense ledger. cache may be nil.
func New(expenses ExpenseStore, gigs GigLister, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "LKR"
	}

	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = time.Minute
	}

	return &Service{expenses: expenses, gigs: gigs, cache: cache, cfg: cfg}
}

type NewExpense struct {
	Date        string          `validate:"required,datetime=2006-01-02"`
	Category    string          `validate:"required,oneof=Travel Gear Marketing Production Staff Other"`
	Description string          `validate:"required,max=500"`
	Amount      decimal.Decimal `validate:"-"`
	Currency    string          `validate:"omitempty,iso4217"`
	GigID       string          `validate:"omitempty,max=64"`
	ReceiptURL  string          `validate:"omitempty,url"`
}

func (s *Service) AddExpense(ctx context.Context, in NewExpense) (domain.Expense, error) {
	const op = "service.ledger.AddExpense"

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.cfg.DefaultCurrency
	}

	if err := validation.Struct(in); err != nil {
		return domain.Expense{}, fmt.Errorf("%s:%w", op, err)
	}

	if !in.Amount.IsPositive() {
		return domain.Expense{}, fmt.Errorf("%s:%w", op, validation.Field("amount", "must be a positive amount"))
	}

	amount, err := money.FromDecimal(in.Amount, in.Currency)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("%s:%w", op, validation.Field("amount", err.Error()))
	}

	date, _ := time.Parse(domain.DateLayout, in.Date)

	e, err := s.expenses.Create(ctx, domain.Expense{
		ID:          uuid.NewString(),
		Date:        date,
		Category:    domain.ExpenseCategory(in.Category),
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Currency:    in.Currency,
		GigID:       in.GigID,
		ReceiptURL:  in.ReceiptURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRef) {
			return domain.Expense{}, fmt.Errorf("%s:%w", op, validation.Field("gig_id", "unknown gig"))
		}
		return domain.Expense{}, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, redisx.KeyFinanceSummary())
	}

	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	const op = "service.ledger.ListExpenses"

	es, err := s.expenses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return es, nil
}

// Summary reports revenue from confirmed gigs, expenses and net per
// currency. Amounts in different currencies are never added together.
func (s *Service) Summary(ctx context.Context) ([]domain.CurrencyTotals, error) {
	const op = "service.ledger.Summary"

	if s.cache == nil {
		out, err := s.summarize(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyFinanceSummary(), s.cfg.SummaryTTL, s.summarize)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (s *Service) summarize(ctx context.Context) ([]domain.CurrencyTotals, error) {
	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, err
	}

	return Summarize(gigs, expenses), nil
}

// Summarize is the pure aggregation behind Summary.
func Summarize(gigs []domain.Gig, expenses []domain.Expense) []domain.CurrencyTotals {
	by := map[string]*domain.CurrencyTotals{}
	row := func(cur string) *domain.CurrencyTotals {
		t, ok := by[cur]
		if !ok {
			t = &domain.CurrencyTotals{Currency: cur}
			by[cur] = t
		}
		return t
	}

	for _, g := range gigs {
		if g.Status == domain.GigConfirmed {
			row(g.Currency).Revenue += g.Fee
		}
	}

	for _, e := range expenses {
		row(e.Currency).Expenses += e.Amount
	}

	out := make([]domain.CurrencyTotals, 0, len(by))
	for _, t := range by {
		t.Net = t.Revenue - t.Expenses
		out = append(out, *t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })

	return out
}
