package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Role is derived at login: accounts on
// the configured admin allowlist authenticate as administrators,
// everyone else as operators.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           *string   `db:"name" json:"name,omitempty"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
