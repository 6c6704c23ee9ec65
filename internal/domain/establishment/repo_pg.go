package establishment

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdalabel/pdalabel/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, name, address, phone, created_at, updated_at`

func scan(row pgx.Row) (*Establishment, error) {
	var e Establishment
	err := row.Scan(&e.ID, &e.Name, &e.Address, &e.Phone, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Establishment) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO establishment (id, name, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Address, e.Phone).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Establishment, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM establishment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, e *Establishment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE establishment SET name=$2, address=$3, phone=$4, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Name, e.Address, e.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM establishment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Establishment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM establishment`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+` FROM establishment
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Establishment
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
