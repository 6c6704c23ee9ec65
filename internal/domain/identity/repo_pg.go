package identity

import (
	"context"
	"fmt"
	"strings"

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

// NewRepoPG returns a PostgreSQL-backed user repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, name, email, hashed_password, created_at, updated_at`

func scan(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO app_user (id, name, email, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, strings.ToLower(u.Email), u.HashedPassword)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM app_user WHERE id = $1`, id)
	return scan(row)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM app_user WHERE email = $1`, strings.ToLower(email))
	return scan(row)
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE app_user
		SET name = $2, email = $3, hashed_password = $4, updated_at = now()
		WHERE id = $1`,
		u.ID, u.Name, strings.ToLower(u.Email), u.HashedPassword)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM app_user`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+cols+` FROM app_user
		ORDER BY email ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, u)
	}
	return result, total, rows.Err()
}
