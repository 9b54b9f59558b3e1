package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tourdesk/internal/domain"
)

type GigRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *GigRepo) With(db DB) *GigRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *GigRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const gigColumns = `id, venue, city, date, start_time, end_time, status, fee, currency, notes, client_id, created_at`

func scanGig(row pgx.Row) (domain.Gig, error) {
	var (
		g        domain.Gig
		clientID *string
	)

	err := row.Scan(
		&g.ID, &g.Venue, &g.City, &g.Date, &g.StartTime, &g.EndTime,
		&g.Status, &g.Fee, &g.Currency, &g.Notes, &clientID, &g.CreatedAt,
	)
	if err != nil {
		return domain.Gig{}, err
	}

	if clientID != nil {
		g.ClientID = *clientID
	}

	return g, nil
}

// Create inserts a gig. The caller assigns the id.
//
// Returns:
//   - repository.ErrConflict if the id is taken.
//   - repository.ErrInvalidRef if the client does not exist.
func (r *GigRepo) Create(ctx context.Context, g domain.Gig) (domain.Gig, error) {
	const op = "postgres.GigRepo.Create"

	db := r.handle()

	created, err := scanGig(db.QueryRow(ctx,
		`INSERT INTO gigs(id, venue, city, date, start_time, end_time, status, fee, currency, notes, client_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+gigColumns,
		g.ID, g.Venue, g.City, g.Date, g.StartTime, g.EndTime,
		g.Status, g.Fee, g.Currency, g.Notes, nullIfEmpty(g.ClientID),
	))
	if err != nil {
		return domain.Gig{}, wrapDBErr(op, err)
	}

	return created, nil
}

func (r *GigRepo) Get(ctx context.Context, id string) (domain.Gig, error) {
	const op = "postgres.GigRepo.Get"

	db := r.handle()

	g, err := scanGig(db.QueryRow(ctx,
		`SELECT `+gigColumns+` FROM gigs WHERE id = $1`,
		id,
	))
	if err != nil {
		return domain.Gig{}, wrapDBErr(op, err)
	}

	return g, nil
}

// List returns all gigs ordered by performance date.
func (r *GigRepo) List(ctx context.Context) ([]domain.Gig, error) {
	const op = "postgres.GigRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+gigColumns+` FROM gigs ORDER BY date, start_time, id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	out := []domain.Gig{}
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, g)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Update applies a partial update; nil fields keep their stored value.
func (r *GigRepo) Update(ctx context.Context, id string, u domain.GigUpdate) (domain.Gig, error) {
	const op = "postgres.GigRepo.Update"

	db := r.handle()

	var clientID *string
	if u.ClientID != nil {
		clientID = nullIfEmpty(*u.ClientID)
	}

	g, err := scanGig(db.QueryRow(ctx,
		`UPDATE gigs SET
		   venue      = COALESCE($2, venue),
		   city       = COALESCE($3, city),
		   date       = COALESCE($4, date),
		   start_time = COALESCE($5, start_time),
		   end_time   = COALESCE($6, end_time),
		   status     = COALESCE($7, status),
		   fee        = COALESCE($8, fee),
		   currency   = COALESCE($9, currency),
		   notes      = COALESCE($10, notes),
		   client_id  = CASE WHEN $11 THEN $12 ELSE client_id END
		 WHERE id = $1
		 RETURNING `+gigColumns,
		id, u.Venue, u.City, u.Date, u.StartTime, u.EndTime,
		u.Status, u.Fee, u.Currency, u.Notes, u.ClientID != nil, clientID,
	))
	if err != nil {
		return domain.Gig{}, wrapDBErr(op, err)
	}

	return g, nil
}
