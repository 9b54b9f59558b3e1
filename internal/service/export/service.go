package export

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
)

type GigLister interface {
	List(ctx context.Context) ([]domain.Gig, error)
}

type ExpenseLister interface {
	List(ctx context.Context) ([]domain.Expense, error)
}

// Sheet receives a full snapshot of gigs and expenses.
type Sheet interface {
	Export(ctx context.Context, gigs []domain.Gig, expenses []domain.Expense) error
}

type Service struct {
	gigs     GigLister
	expenses ExpenseLister
	sheet    Sheet
	timeout  time.Duration
}

func New(gigs GigLister, expenses ExpenseLister, sheet Sheet, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Service{gigs: gigs, expenses: expenses, sheet: sheet, timeout: timeout}
}

// Sync pushes every gig and expense to the spreadsheet. It returns
// sheets.ErrNotConfigured unchanged when the integration is off.
func (s *Service) Sync(ctx context.Context) error {
	const op = "service.export.Sync"

	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sheet.Export(ctx, gigs, expenses); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
