// Package sheets mirrors gigs and expenses into a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var ErrNotConfigured = errors.New("google sheets integration not configured")

type Config struct {
	CredentialsJSON string
	SpreadsheetID   string
}

type Exporter struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
}

// New returns an exporter that fails every call with ErrNotConfigured when
// credentials or the spreadsheet id are missing.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	const op = "sheets.New"

	if cfg.CredentialsJSON == "" || cfg.SpreadsheetID == "" {
		return &Exporter{}, nil
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Exporter{values: svc.Spreadsheets.Values, spreadsheetID: cfg.SpreadsheetID}, nil
}

func (e *Exporter) Configured() bool { return e != nil && e.values != nil }

// Export overwrites the Gigs and Expenses tabs starting at A1.
func (e *Exporter) Export(ctx context.Context, gigs []domain.Gig, expenses []domain.Expense) error {
	const op = "sheets.Exporter.Export"

	if !e.Configured() {
		return fmt.Errorf("%s:%w", op, ErrNotConfigured)
	}

	if err := e.write(ctx, "Gigs!A1", GigRows(gigs)); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := e.write(ctx, "Expenses!A1", ExpenseRows(expenses)); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (e *Exporter) write(ctx context.Context, rng string, rows [][]any) error {
	_, err := e.values.Update(e.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func GigRows(gigs []domain.Gig) [][]any {
	rows := [][]any{{"ID", "Venue", "City", "Date", "Start", "End", "Status", "Fee", "Currency", "Notes"}}
	for _, g := range gigs {
		rows = append(rows, []any{
			g.ID, g.Venue, g.City, g.Date.Format(domain.DateLayout), g.StartTime, g.EndTime,
			string(g.Status), g.Fee.String(g.Currency), g.Currency, g.Notes,
		})
	}
	return rows
}

func ExpenseRows(expenses []domain.Expense) [][]any {
	rows := [][]any{{"ID", "Date", "Category", "Description", "Amount", "Currency", "Gig ID"}}
	for _, e := range expenses {
		rows = append(rows, []any{
			e.ID, e.Date.Format(domain.DateLayout), string(e.Category), e.Description,
			e.Amount.String(e.Currency), e.Currency, e.GigID,
		})
	}
	return rows
}
