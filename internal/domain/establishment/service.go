package establishment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrHasResidents is returned when deleting an establishment that still
// houses residents. Residents must be deleted first; there is no automatic
// cascade at this level.
var ErrHasResidents = errors.New("establishment still has residents")

type Service struct {
	repo      Repository
	residents ResidentCounter
}

func NewService(repo Repository, residents ResidentCounter) *Service {
	return &Service{repo: repo, residents: residents}
}

func (s *Service) Create(ctx context.Context, e *Establishment) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Establishment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, e *Establishment) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.residents.CountByEstablishment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d resident(s) attached", ErrHasResidents, count)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Establishment, int, error) {
	return s.repo.List(ctx, limit, offset)
}
