package label

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service assembles label models from stored prescriptions and feeds
// them to a renderer.
type Service struct {
	source Source
	log    zerolog.Logger
}

func NewService(source Source, log zerolog.Logger) *Service {
	return &Service{source: source, log: log}
}

// BuildModels resolves the requested prescription ids to label
// models. Output order is exactly input order, duplicates render as
// separate labels. Ids whose joined data is missing are skipped with
// a log line; one bad id never fails the batch.
func (s *Service) BuildModels(ctx context.Context, ids []uuid.UUID) ([]Model, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	data, err := s.source.FetchData(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("load label data: %w", err)
	}

	models := make([]Model, 0, len(ids))
	for _, id := range ids {
		d, ok := data[id]
		if !ok {
			s.log.Warn().Str("prescription_id", id.String()).
				Msg("skipping label with missing join data")
			continue
		}
		models = append(models, Format(d))
	}
	if len(models) == 0 {
		return nil, ErrEmptySelection
	}
	return models, nil
}

// Render builds the models and hands them to the given backend.
func (s *Service) Render(ctx context.Context, r Renderer, ids []uuid.UUID) (*Document, error) {
	models, err := s.BuildModels(ctx, ids)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, models)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
