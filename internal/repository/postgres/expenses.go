package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tourdesk/internal/domain"
)

type ExpenseRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ExpenseRepo) With(db DB) *ExpenseRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ExpenseRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var (
		e     domain.Expense
		gigID *string
	)

	if err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &e.Amount, &e.Currency, &gigID, &e.ReceiptURL); err != nil {
		return domain.Expense{}, err
	}

	if gigID != nil {
		e.GigID = *gigID
	}

	return e, nil
}

func (r *ExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	const op = "postgres.ExpenseRepo.Create"

	db := r.handle()

	created, err := scanExpense(db.QueryRow(ctx,
		`INSERT INTO expenses(id, date, category, description, amount, currency, gig_id, receipt_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, date, category, description, amount, currency, gig_id, receipt_url`,
		e.ID, e.Date, e.Category, e.Description, e.Amount, e.Currency, nullIfEmpty(e.GigID), e.ReceiptURL,
	))
	if err != nil {
		return domain.Expense{}, wrapDBErr(op, err)
	}

	return created, nil
}

func (r *ExpenseRepo) List(ctx context.Context) ([]domain.Expense, error) {
	const op = "postgres.ExpenseRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, date, category, description, amount, currency, gig_id, receipt_url
		 FROM expenses ORDER BY date DESC, id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
