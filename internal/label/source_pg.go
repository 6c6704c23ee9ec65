package label

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Source loads the joined display data for a set of prescription ids.
// Ids whose join rows are missing are simply absent from the result.
type Source interface {
	FetchData(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Data, error)
}

type sourcePG struct {
	pool *pgxpool.Pool
}

// NewSourcePG returns a PostgreSQL-backed label data source.
func NewSourcePG(pool *pgxpool.Pool) Source {
	return &sourcePG{pool: pool}
}

func (s *sourcePG) FetchData(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Data, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.dosage_instructions,
		       p.morning, p.noon, p.evening, p.bedtime,
		       coalesce(p.other_time, ''), p.frequency_per_day,
		       p.start_date, p.end_date,
		       r.last_name, r.first_name, coalesce(r.room, ''), coalesce(r.floor, ''),
		       e.name, m.name
		FROM prescription p
		JOIN resident r ON r.id = p.resident_id
		JOIN establishment e ON e.id = r.establishment_id
		JOIN medication m ON m.id = p.medication_id
		WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch label data: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]Data, len(ids))
	for rows.Next() {
		var (
			id  uuid.UUID
			d   Data
			end *time.Time
		)
		err := rows.Scan(&id, &d.DosageInstructions,
			&d.Morning, &d.Noon, &d.Evening, &d.Bedtime,
			&d.OtherTime, &d.FrequencyPerDay,
			&d.StartDate, &end,
			&d.ResidentLastName, &d.ResidentFirstName, &d.Room, &d.Floor,
			&d.EstablishmentName, &d.MedicationName)
		if err != nil {
			return nil, fmt.Errorf("scan label data: %w", err)
		}
		d.PrescriptionID = id.String()
		d.EndDate = end
		result[id] = d
	}
	return result, rows.Err()
}
