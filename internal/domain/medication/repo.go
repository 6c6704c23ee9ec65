package medication

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the medication catalog.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Medication, int, error)
}

// PrescriptionPurger removes all prescriptions referencing a
// medication, inside the delete transaction.
type PrescriptionPurger interface {
	DeleteByMedication(ctx context.Context, medicationID uuid.UUID) (int, error)
}

// TxRunner executes fn inside a database transaction carried on the
// context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
