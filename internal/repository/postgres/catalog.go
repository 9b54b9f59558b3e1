package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tourdesk/internal/domain"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanCatalogItem(row pgx.Row) (domain.CatalogItem, error) {
	var it domain.CatalogItem
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.DailyRate, &it.Currency)
	return it, err
}

// Create appends an item to the inventory. Items are never updated in place.
func (r *CatalogRepo) Create(ctx context.Context, it domain.CatalogItem) (domain.CatalogItem, error) {
	const op = "postgres.CatalogRepo.Create"

	db := r.handle()

	created, err := scanCatalogItem(db.QueryRow(ctx,
		`INSERT INTO catalog_items(id, name, category, daily_rate, currency)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, category, daily_rate, currency`,
		it.ID, it.Name, it.Category, it.DailyRate, it.Currency,
	))
	if err != nil {
		return domain.CatalogItem{}, wrapDBErr(op, err)
	}

	return created, nil
}

func (r *CatalogRepo) Get(ctx context.Context, id string) (domain.CatalogItem, error) {
	const op = "postgres.CatalogRepo.Get"

	db := r.handle()

	it, err := scanCatalogItem(db.QueryRow(ctx,
		`SELECT id, name, category, daily_rate, currency
		 FROM catalog_items WHERE id = $1`,
		id,
	))
	if err != nil {
		return domain.CatalogItem{}, wrapDBErr(op, err)
	}

	return it, nil
}

func (r *CatalogRepo) List(ctx context.Context) ([]domain.CatalogItem, error) {
	const op = "postgres.CatalogRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, category, daily_rate, currency
		 FROM catalog_items ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := []domain.CatalogItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, it)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
