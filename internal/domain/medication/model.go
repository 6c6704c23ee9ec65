package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a drug in the pharmacy catalog. Its name is the text
// printed on labels.
type Medication struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
