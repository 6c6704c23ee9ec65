package resident

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdalabel/pdalabel/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a PostgreSQL-backed resident repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, establishment_id, first_name, last_name, room, floor, created_at, updated_at`

func scan(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(&res.ID, &res.EstablishmentID, &res.FirstName, &res.LastName,
		&res.Room, &res.Floor, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repoPG) Create(ctx context.Context, res *Resident) error {
	res.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO resident (id, establishment_id, first_name, last_name, room, floor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		res.ID, res.EstablishmentID, res.FirstName, res.LastName, res.Room, res.Floor)
	if err := row.Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return fmt.Errorf("insert resident: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resident, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM resident WHERE id = $1`, id)
	return scan(row)
}

func (r *repoPG) Update(ctx context.Context, res *Resident) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE resident
		SET establishment_id = $2, first_name = $3, last_name = $4, room = $5,
		    floor = $6, updated_at = now()
		WHERE id = $1`,
		res.ID, res.EstablishmentID, res.FirstName, res.LastName, res.Room, res.Floor)
	if err != nil {
		return fmt.Errorf("update resident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM resident WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*Resident, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM resident WHERE establishment_id = $1`, establishmentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count residents: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+cols+` FROM resident
		WHERE establishment_id = $1
		ORDER BY last_name ASC, first_name ASC, id ASC
		LIMIT $2 OFFSET $3`,
		establishmentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var result []*Resident
	for rows.Next() {
		res, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, res)
	}
	return result, total, rows.Err()
}

func (r *repoPG) CountByEstablishment(ctx context.Context, establishmentID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM resident WHERE establishment_id = $1`, establishmentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count residents: %w", err)
	}
	return n, nil
}
