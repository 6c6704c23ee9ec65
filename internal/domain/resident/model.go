package resident

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a person living in an establishment and receiving
// medication prepared by the pharmacy.
type Resident struct {
	ID              uuid.UUID `db:"id" json:"id"`
	EstablishmentID uuid.UUID `db:"establishment_id" json:"establishmentId"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Room            *string   `db:"room" json:"room,omitempty"`
	Floor           *string   `db:"floor" json:"floor,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the name used on labels and listings,
// surname first.
func (r *Resident) DisplayName() string {
	return r.LastName + " " + r.FirstName
}
