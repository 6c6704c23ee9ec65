package establishment

import (
	"time"

	"github.com/google/uuid"
)

// Establishment maps to the establishment table: a care facility housing
// residents whose medication the pharmacy dispenses.
type Establishment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
