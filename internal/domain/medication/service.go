package medication

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service implements medication catalog business rules.
type Service struct {
	repo          Repository
	prescriptions PrescriptionPurger
	inTx          TxRunner
}

func NewService(repo Repository, prescriptions PrescriptionPurger, inTx TxRunner) *Service {
	return &Service{repo: repo, prescriptions: prescriptions, inTx: inTx}
}

func validate(m *Medication) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

// Delete removes a medication and every prescription that references
// it, in one transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.prescriptions.DeleteByMedication(ctx, id); err != nil {
			return fmt.Errorf("delete medication prescriptions: %w", err)
		}
		return s.repo.Delete(ctx, id)
	})
}

// List returns catalog entries, optionally filtered by a name substring.
func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Medication, int, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		return s.repo.Search(ctx, query, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
