package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for prescriptions.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByResidents returns prescriptions for the given resident
	// ids. When activeOnly is true, rows whose end date has passed
	// are excluded.
	ListByResidents(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]*Prescription, error)
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
	DeleteByResident(ctx context.Context, residentID uuid.UUID) (int, error)
	DeleteByMedication(ctx context.Context, medicationID uuid.UUID) (int, error)
	CountByMedication(ctx context.Context, medicationID uuid.UUID) (int, error)
}

// ResidentChecker verifies the resident referenced by a prescription
// exists.
type ResidentChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// MedicationChecker verifies the medication referenced by a
// prescription exists.
type MedicationChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
