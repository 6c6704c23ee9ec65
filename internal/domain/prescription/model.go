package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription ties a resident to a medication with dosage timing.
// The four moment flags plus OtherTime describe when the dose is
// taken; FrequencyPerDay is only a display fallback when none of
// them are set.
type Prescription struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ResidentID         uuid.UUID  `db:"resident_id" json:"residentId"`
	MedicationID       uuid.UUID  `db:"medication_id" json:"medicationId"`
	DosageInstructions string     `db:"dosage_instructions" json:"dosageInstructions"`
	Morning            bool       `db:"morning" json:"morning"`
	Noon               bool       `db:"noon" json:"noon"`
	Evening            bool       `db:"evening" json:"evening"`
	Bedtime            bool       `db:"bedtime" json:"bedtime"`
	OtherTime          *string    `db:"other_time" json:"otherTime,omitempty"`
	FrequencyPerDay    int        `db:"frequency_per_day" json:"frequencyPerDay"`
	StartDate          time.Time  `db:"start_date" json:"startDate"`
	EndDate            *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the prescription is running at t. Activity
// is recomputed from the date range on every read, never stored.
func (p *Prescription) Active(t time.Time) bool {
	if p.StartDate.After(t) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(t)
}

// HasMoment reports whether any dosage moment or timing override is
// set. Create and update reject prescriptions where this is false.
func (p *Prescription) HasMoment() bool {
	if p.Morning || p.Noon || p.Evening || p.Bedtime {
		return true
	}
	return p.OtherTime != nil && *p.OtherTime != ""
}
