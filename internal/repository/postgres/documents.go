package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/repository"
)

type DocumentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *DocumentRepo) With(db DB) *DocumentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *DocumentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const documentColumns = `id, gig_id, type, date_issued, status, file_name, currency, total_amount,
	line_items, include_performance_fee, performance_fee, document_store_ref, bill_to_name, bill_to_venue`

func scanDocument(row pgx.Row) (domain.IssuedDocument, error) {
	var (
		d     domain.IssuedDocument
		items []byte
	)

	err := row.Scan(
		&d.ID, &d.GigID, &d.Type, &d.DateIssued, &d.Status, &d.FileName, &d.Currency, &d.TotalAmount,
		&items, &d.IncludePerformanceFee, &d.PerformanceFee, &d.DocumentStoreRef, &d.BillToName, &d.BillToVenue,
	)
	if err != nil {
		return domain.IssuedDocument{}, err
	}

	d.LineItems = []domain.LineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &d.LineItems); err != nil {
			return domain.IssuedDocument{}, fmt.Errorf("decode line items: %w", err)
		}
	}

	return d, nil
}

// Save inserts the document or replaces every field of the record with the
// same id in a single statement.
//
// Returns:
//   - repository.ErrInvalidRef if the gig does not exist.
func (r *DocumentRepo) Save(ctx context.Context, d domain.IssuedDocument) (domain.IssuedDocument, error) {
	const op = "postgres.DocumentRepo.Save"

	db := r.handle()

	items := d.LineItems
	if items == nil {
		items = []domain.LineItem{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return domain.IssuedDocument{}, fmt.Errorf("%s:%w", op, err)
	}

	saved, err := scanDocument(db.QueryRow(ctx,
		`INSERT INTO documents(id, gig_id, type, date_issued, status, file_name, currency, total_amount,
		   line_items, include_performance_fee, performance_fee, document_store_ref, bill_to_name, bill_to_venue)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (id) DO UPDATE SET
		   gig_id                  = EXCLUDED.gig_id,
		   type                    = EXCLUDED.type,
		   date_issued             = EXCLUDED.date_issued,
		   status                  = EXCLUDED.status,
		   file_name               = EXCLUDED.file_name,
		   currency                = EXCLUDED.currency,
		   total_amount            = EXCLUDED.total_amount,
		   line_items              = EXCLUDED.line_items,
		   include_performance_fee = EXCLUDED.include_performance_fee,
		   performance_fee         = EXCLUDED.performance_fee,
		   document_store_ref      = EXCLUDED.document_store_ref,
		   bill_to_name            = EXCLUDED.bill_to_name,
		   bill_to_venue           = EXCLUDED.bill_to_venue,
		   updated_at              = now()
		 RETURNING `+documentColumns,
		d.ID, d.GigID, d.Type, d.DateIssued, d.Status, d.FileName, d.Currency, d.TotalAmount,
		b, d.IncludePerformanceFee, d.PerformanceFee, d.DocumentStoreRef, d.BillToName, d.BillToVenue,
	))
	if err != nil {
		return domain.IssuedDocument{}, wrapDBErr(op, err)
	}

	return saved, nil
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (domain.IssuedDocument, error) {
	const op = "postgres.DocumentRepo.Get"

	db := r.handle()

	d, err := scanDocument(db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		id,
	))
	if err != nil {
		return domain.IssuedDocument{}, wrapDBErr(op, err)
	}

	return d, nil
}

// ListByGig returns the documents of one gig, newest first. An empty
// gigID lists every document.
func (r *DocumentRepo) ListByGig(ctx context.Context, gigID string) ([]domain.IssuedDocument, error) {
	const op = "postgres.DocumentRepo.ListByGig"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE $1 = '' OR gig_id = $1
		 ORDER BY date_issued DESC, updated_at DESC`,
		gigID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := []domain.IssuedDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// SetStoreRef records the store link of a document saved while the store
// was unavailable.
func (r *DocumentRepo) SetStoreRef(ctx context.Context, id, ref string) error {
	const op = "postgres.DocumentRepo.SetStoreRef"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE documents SET document_store_ref = $2, updated_at = now() WHERE id = $1`,
		id, ref,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
