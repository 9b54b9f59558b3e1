package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/kirinyoku/tourdesk/internal/repository"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/shopspring/decimal"
)

// GigStore is the gig registry's persistence. *postgres.GigRepo satisfies it.
type GigStore interface {
	Create(ctx context.Context, g domain.Gig) (domain.Gig, error)
	Get(ctx context.Context, id string) (domain.Gig, error)
	List(ctx context.Context) ([]domain.Gig, error)
	Update(ctx context.Context, id string, u domain.GigUpdate) (domain.Gig, error)
}

// Invalidator drops cached views derived from gigs.
type Invalidator interface {
	InvalidateGigs(ctx context.Context) error
}

type Config struct {
	DefaultCurrency string
}

type Service struct {
	gigs   GigStore
	cache  Invalidator
	logger *slog.Logger
	cfg    Config
}

func New(gigs GigStore, cache Invalidator, logger *slog.Logger, cfg Config) *Service {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "LKR"
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{gigs: gigs, cache: cache, logger: logger, cfg: cfg}
}

// NewGig is a booking request. Fee is in major units of Currency.
type NewGig struct {
	Venue     string          `validate:"required,max=200"`
	City      string          `validate:"required,max=100"`
	Date      string          `validate:"required,datetime=2006-01-02"`
	StartTime string          `validate:"omitempty,datetime=15:04"`
	EndTime   string          `validate:"omitempty,datetime=15:04"`
	Status    string          `validate:"omitempty,oneof=Confirmed Pending Canceled"`
	Fee       decimal.Decimal `validate:"-"`
	Currency  string          `validate:"omitempty,iso4217"`
	Notes     string          `validate:"max=2000"`
	ClientID  string          `validate:"omitempty,max=64"`
}

// CreateGig validates and registers a gig. Status defaults to Pending and
// currency to the configured default.
//
// Returns:
//   - validation.ErrInvalid for rejected input, including an unknown client.
func (s *Service) CreateGig(ctx context.Context, in NewGig) (domain.Gig, error) {
	const op = "service.bookings.CreateGig"

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.cfg.DefaultCurrency
	}

	if err := validation.Struct(in); err != nil {
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	fee, err := feeAmount(in.Fee, in.Currency)
	if err != nil {
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	date, _ := time.Parse(domain.DateLayout, in.Date)

	status := domain.GigStatus(in.Status)
	if status == "" {
		status = domain.GigPending
	}

	g, err := s.gigs.Create(ctx, domain.Gig{
		ID:        uuid.NewString(),
		Venue:     strings.TrimSpace(in.Venue),
		City:      strings.TrimSpace(in.City),
		Date:      date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    status,
		Fee:       fee,
		Currency:  in.Currency,
		Notes:     in.Notes,
		ClientID:  in.ClientID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRef) {
			return domain.Gig{}, fmt.Errorf("%s:%w", op, validation.Field("client_id", "unknown client"))
		}
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx)

	return g, nil
}

func (s *Service) GetGig(ctx context.Context, id string) (domain.Gig, error) {
	const op = "service.bookings.GetGig"

	g, err := s.gigs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Gig{}, fmt.Errorf("%s:%w", op, ErrGigNotFound)
		}
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	return g, nil
}

func (s *Service) ListGigs(ctx context.Context) ([]domain.Gig, error) {
	const op = "service.bookings.ListGigs"

	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return gigs, nil
}

// GigPatch is a partial update. Fee is in major units of the resulting currency.
type GigPatch struct {
	Venue     *string          `validate:"omitnil,min=1,max=200"`
	City      *string          `validate:"omitnil,min=1,max=100"`
	Date      *string          `validate:"omitempty,datetime=2006-01-02"`
	StartTime *string          `validate:"omitempty,datetime=15:04"`
	EndTime   *string          `validate:"omitempty,datetime=15:04"`
	Status    *string          `validate:"omitempty,oneof=Confirmed Pending Canceled"`
	Fee       *decimal.Decimal `validate:"-"`
	Currency  *string          `validate:"omitempty,iso4217"`
	Notes     *string          `validate:"omitempty,max=2000"`
	ClientID  *string          `validate:"omitempty,max=64"`
}

func (s *Service) UpdateGig(ctx context.Context, id string, p GigPatch) (domain.Gig, error) {
	const op = "service.bookings.UpdateGig"

	if p.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*p.Currency))
		p.Currency = &c
	}

	if err := validation.Struct(p); err != nil {
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	current, err := s.GetGig(ctx, id)
	if err != nil {
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	u := domain.GigUpdate{
		Venue:     p.Venue,
		City:      p.City,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Notes:     p.Notes,
		ClientID:  p.ClientID,
		Currency:  p.Currency,
	}

	if p.Date != nil {
		d, _ := time.Parse(domain.DateLayout, *p.Date)
		u.Date = &d
	}

	if p.Status != nil {
		st := domain.GigStatus(*p.Status)
		u.Status = &st
	}

	currency := current.Currency
	if p.Currency != nil {
		currency = *p.Currency
	}

	switch {
	case p.Fee != nil:
		fee, err := feeAmount(*p.Fee, currency)
		if err != nil {
			return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
		}
		u.Fee = &fee
	case currency != current.Currency:
		// the stored fee is in minor units of the old currency
		fee, err := feeAmount(current.Fee.Decimal(current.Currency), currency)
		if err != nil {
			return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
		}
		u.Fee = &fee
	}

	g, err := s.gigs.Update(ctx, id, u)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Gig{}, fmt.Errorf("%s:%w", op, ErrGigNotFound)
		case errors.Is(err, repository.ErrInvalidRef):
			return domain.Gig{}, fmt.Errorf("%s:%w", op, validation.Field("client_id", "unknown client"))
		}
		return domain.Gig{}, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx)

	return g, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.InvalidateGigs(ctx); err != nil {
		s.logger.Warn("failed to invalidate gig caches", "error", err)
	}
}

func feeAmount(fee decimal.Decimal, currency string) (money.Amount, error) {
	if fee.IsNegative() {
		return 0, validation.Field("fee", "must not be negative")
	}

	amt, err := money.FromDecimal(fee, currency)
	if err != nil {
		return 0, validation.Field("fee", err.Error())
	}

	return amt, nil
}
