package prescription

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

// NewRepoPG returns a PostgreSQL-backed prescription repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, resident_id, medication_id, dosage_instructions,
	morning, noon, evening, bedtime, other_time, frequency_per_day,
	start_date, end_date, created_at, updated_at`

func scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.ResidentID, &p.MedicationID, &p.DosageInstructions,
		&p.Morning, &p.Noon, &p.Evening, &p.Bedtime, &p.OtherTime, &p.FrequencyPerDay,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (id, resident_id, medication_id, dosage_instructions,
			morning, noon, evening, bedtime, other_time, frequency_per_day,
			start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		p.ID, p.ResidentID, p.MedicationID, p.DosageInstructions,
		p.Morning, p.Noon, p.Evening, p.Bedtime, p.OtherTime, p.FrequencyPerDay,
		p.StartDate, p.EndDate)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM prescription WHERE id = $1`, id)
	return scan(row)
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription
		SET resident_id = $2, medication_id = $3, dosage_instructions = $4,
		    morning = $5, noon = $6, evening = $7, bedtime = $8,
		    other_time = $9, frequency_per_day = $10,
		    start_date = $11, end_date = $12, updated_at = now()
		WHERE id = $1`,
		p.ID, p.ResidentID, p.MedicationID, p.DosageInstructions,
		p.Morning, p.Noon, p.Evening, p.Bedtime, p.OtherTime, p.FrequencyPerDay,
		p.StartDate, p.EndDate)
	if err != nil {
		return fmt.Errorf("update prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) ListByResidents(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]*Prescription, error) {
	if len(residentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + cols + ` FROM prescription WHERE resident_id = ANY($1)`
	if activeOnly {
		query += ` AND start_date <= now() AND (end_date IS NULL OR end_date >= now())`
	}
	query += ` ORDER BY start_date DESC, resident_id ASC, id ASC`

	rows, err := r.conn(ctx).Query(ctx, query, residentIDs)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions by residents: %w", err)
	}
	defer rows.Close()

	var result []*Prescription
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM prescription`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prescriptions: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+cols+` FROM prescription
		ORDER BY start_date DESC, resident_id ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	var result []*Prescription
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *repoPG) DeleteByResident(ctx context.Context, residentID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE resident_id = $1`, residentID)
	if err != nil {
		return 0, fmt.Errorf("delete prescriptions by resident: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) DeleteByMedication(ctx context.Context, medicationID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE medication_id = $1`, medicationID)
	if err != nil {
		return 0, fmt.Errorf("delete prescriptions by medication: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) CountByMedication(ctx context.Context, medicationID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM prescription WHERE medication_id = $1`, medicationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prescriptions by medication: %w", err)
	}
	return n, nil
}
