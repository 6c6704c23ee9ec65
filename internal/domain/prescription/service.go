package prescription

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNoMoment is returned when a prescription carries no dosage
// moment flag and no timing override. FrequencyPerDay alone is not
// enough to accept a prescription.
var ErrNoMoment = fmt.Errorf("at least one dosage moment or a timing override is required")

// Service implements prescription business rules.
type Service struct {
	repo        Repository
	residents   ResidentChecker
	medications MedicationChecker
}

func NewService(repo Repository, residents ResidentChecker, medications MedicationChecker) *Service {
	return &Service{repo: repo, residents: residents, medications: medications}
}

func (s *Service) validate(ctx context.Context, p *Prescription) error {
	p.DosageInstructions = strings.TrimSpace(p.DosageInstructions)
	if p.DosageInstructions == "" {
		return fmt.Errorf("dosage instructions are required")
	}
	if p.ResidentID == uuid.Nil {
		return fmt.Errorf("resident id is required")
	}
	if p.MedicationID == uuid.Nil {
		return fmt.Errorf("medication id is required")
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("end date cannot precede start date")
	}
	if !p.HasMoment() {
		return ErrNoMoment
	}
	ok, err := s.residents.Exists(ctx, p.ResidentID)
	if err != nil {
		return fmt.Errorf("check resident: %w", err)
	}
	if !ok {
		return fmt.Errorf("resident does not exist")
	}
	ok, err = s.medications.Exists(ctx, p.MedicationID)
	if err != nil {
		return fmt.Errorf("check medication: %w", err)
	}
	if !ok {
		return fmt.Errorf("medication does not exist")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Prescription) error {
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListByResidents returns the prescriptions of the given residents.
// The activeOnly switch is deliberate and has no default: callers
// always state whether expired prescriptions belong in the result.
func (s *Service) ListByResidents(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]*Prescription, error) {
	if len(residentIDs) == 0 {
		return nil, fmt.Errorf("at least one resident id is required")
	}
	return s.repo.ListByResidents(ctx, residentIDs, activeOnly)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// CountByMedication reports how many prescriptions reference a
// medication. Used to warn before a cascading medication delete.
func (s *Service) CountByMedication(ctx context.Context, medicationID uuid.UUID) (int, error) {
	return s.repo.CountByMedication(ctx, medicationID)
}
