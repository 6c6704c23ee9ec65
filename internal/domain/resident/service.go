package resident

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownEstablishment is returned when a resident references an
// establishment that does not exist.
var ErrUnknownEstablishment = fmt.Errorf("establishment does not exist")

// Service implements resident business rules.
type Service struct {
	repo           Repository
	establishments EstablishmentChecker
	prescriptions  PrescriptionPurger
	inTx           TxRunner
}

func NewService(repo Repository, establishments EstablishmentChecker, prescriptions PrescriptionPurger, inTx TxRunner) *Service {
	return &Service{repo: repo, establishments: establishments, prescriptions: prescriptions, inTx: inTx}
}

func (s *Service) validate(ctx context.Context, r *Resident) error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" {
		return fmt.Errorf("first name is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last name is required")
	}
	if r.EstablishmentID == uuid.Nil {
		return fmt.Errorf("establishment id is required")
	}
	ok, err := s.establishments.Exists(ctx, r.EstablishmentID)
	if err != nil {
		return fmt.Errorf("check establishment: %w", err)
	}
	if !ok {
		return ErrUnknownEstablishment
	}
	return nil
}

func (s *Service) Create(ctx context.Context, r *Resident) error {
	if err := s.validate(ctx, r); err != nil {
		return err
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resident, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, r *Resident) error {
	if err := s.validate(ctx, r); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

// Delete removes a resident together with all of their prescriptions.
// Both deletions happen in one transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.prescriptions.DeleteByResident(ctx, id); err != nil {
			return fmt.Errorf("delete resident prescriptions: %w", err)
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*Resident, int, error) {
	return s.repo.ListByEstablishment(ctx, establishmentID, limit, offset)
}
