package resident

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for residents.
type Repository interface {
	Create(ctx context.Context, r *Resident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	Update(ctx context.Context, r *Resident) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*Resident, int, error)
	CountByEstablishment(ctx context.Context, establishmentID uuid.UUID) (int, error)
}

// EstablishmentChecker verifies an establishment exists before a
// resident is attached to it.
type EstablishmentChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PrescriptionPurger removes all prescriptions for a resident. It is
// called inside the delete transaction so a resident never disappears
// while its prescriptions survive.
type PrescriptionPurger interface {
	DeleteByResident(ctx context.Context, residentID uuid.UUID) (int, error)
}

// TxRunner executes fn inside a database transaction carried on the
// context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
