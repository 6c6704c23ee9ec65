package medication

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

// NewRepoPG returns a PostgreSQL-backed medication repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, name, description, created_at, updated_at`

func scan(row pgx.Row) (*Medication, error) {
	var m Medication
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medication (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.Description)
	if err := row.Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medication WHERE id = $1`, id)
	return scan(row)
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medication
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1`,
		m.ID, m.Name, m.Description)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM medication`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medications: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+cols+` FROM medication
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	return collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Medication, int, error) {
	q := r.conn(ctx)
	pattern := "%" + query + "%"

	var total int
	if err := q.QueryRow(ctx,
		`SELECT count(*) FROM medication WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medications: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+cols+` FROM medication
		WHERE name ILIKE $1
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search medications: %w", err)
	}
	defer rows.Close()
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Medication, int, error) {
	var result []*Medication
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, m)
	}
	return result, total, rows.Err()
}
