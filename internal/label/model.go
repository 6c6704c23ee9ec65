package label

import (
	"fmt"
	"strings"
	"time"
)

// Data is one prescription joined with its resident, that resident's
// establishment and its medication. It is the only input Format needs.
type Data struct {
	PrescriptionID     string
	DosageInstructions string
	Morning            bool
	Noon               bool
	Evening            bool
	Bedtime            bool
	OtherTime          string
	FrequencyPerDay    int
	StartDate          time.Time
	EndDate            *time.Time

	ResidentLastName  string
	ResidentFirstName string
	Room              string
	Floor             string

	EstablishmentName string
	MedicationName    string
}

// Model is the normalized set of display strings printed on one
// label. Every renderer consumes a Model; none of them re-derives any
// of these strings on its own.
type Model struct {
	EstablishmentName   string `json:"establishmentName"`
	MedicationName      string `json:"medicationName"`
	DosageInstructions  string `json:"dosageInstructions"`
	MomentText          string `json:"momentText"`
	ResidentDisplayName string `json:"residentDisplayName"`
	LocationText        string `json:"locationText"`
	PseudoBarcodeText   string `json:"pseudoBarcodeText"`
	DateRangeText       string `json:"dateRangeText"`
}

const barcodeLen = 10

// Format derives the label display strings from one joined
// prescription. It is a pure function: identical input yields
// byte-identical strings no matter which renderer consumes them.
func Format(d Data) Model {
	return Model{
		EstablishmentName:   d.EstablishmentName,
		MedicationName:      d.MedicationName,
		DosageInstructions:  d.DosageInstructions,
		MomentText:          momentText(d),
		ResidentDisplayName: d.ResidentLastName + " " + d.ResidentFirstName,
		LocationText:        fmt.Sprintf("Room %s, Floor %s", d.Room, d.Floor),
		PseudoBarcodeText:   barcodeText(d.PrescriptionID),
		DateRangeText:       dateRangeText(d.StartDate, d.EndDate),
	}
}

// momentText joins the set moments in fixed order, appending the
// free-text override last. With nothing set, the daily frequency is
// the fallback display.
func momentText(d Data) string {
	var parts []string
	if d.Morning {
		parts = append(parts, "Morning")
	}
	if d.Noon {
		parts = append(parts, "Noon")
	}
	if d.Evening {
		parts = append(parts, "Evening")
	}
	if d.Bedtime {
		parts = append(parts, "Bedtime")
	}
	if d.OtherTime != "" {
		parts = append(parts, d.OtherTime)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%dx/day", d.FrequencyPerDay)
	}
	return strings.Join(parts, ", ")
}

func barcodeText(id string) string {
	if len(id) > barcodeLen {
		return id[:barcodeLen]
	}
	return id
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func dateRangeText(start time.Time, end *time.Time) string {
	if end == nil {
		return formatDate(start)
	}
	return formatDate(start) + " - " + formatDate(*end)
}
