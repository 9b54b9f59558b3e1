package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tourdesk/internal/domain"
)

type ClientRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ClientRepo) With(db DB) *ClientRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ClientRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Category)
	return c, err
}

func (r *ClientRepo) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	const op = "postgres.ClientRepo.Create"

	db := r.handle()

	created, err := scanClient(db.QueryRow(ctx,
		`INSERT INTO clients(id, name, company, email, phone, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, name, company, email, phone, category`,
		c.ID, c.Name, c.Company, c.Email, c.Phone, c.Category,
	))
	if err != nil {
		return domain.Client{}, wrapDBErr(op, err)
	}

	return created, nil
}

func (r *ClientRepo) Get(ctx context.Context, id string) (domain.Client, error) {
	const op = "postgres.ClientRepo.Get"

	db := r.handle()

	c, err := scanClient(db.QueryRow(ctx,
		`SELECT id, name, company, email, phone, category
		 FROM clients WHERE id = $1`,
		id,
	))
	if err != nil {
		return domain.Client{}, wrapDBErr(op, err)
	}

	return c, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	const op = "postgres.ClientRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, company, email, phone, category
		 FROM clients ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
