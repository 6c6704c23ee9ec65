package establishment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Establishment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Establishment, error)
	Update(ctx context.Context, e *Establishment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Establishment, int, error)
}

// ResidentCounter reports how many residents belong to an establishment.
// Implemented by the resident repository; used to refuse deleting an
// establishment that still houses residents.
type ResidentCounter interface {
	CountByEstablishment(ctx context.Context, establishmentID uuid.UUID) (int, error)
}
