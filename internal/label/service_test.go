package label

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockSource struct {
	data    map[uuid.UUID]Data
	fetched [][]uuid.UUID
}

func (m *mockSource) FetchData(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Data, error) {
	m.fetched = append(m.fetched, ids)
	result := make(map[uuid.UUID]Data, len(ids))
	for _, id := range ids {
		if d, ok := m.data[id]; ok {
			result[id] = d
		}
	}
	return result, nil
}

func newTestService(data map[uuid.UUID]Data) (*Service, *mockSource) {
	src := &mockSource{data: data}
	return NewService(src, zerolog.Nop()), src
}

func dataFor(name string) Data {
	d := sample()
	d.MedicationName = name
	return d
}

func TestBuildModels_PreservesSelectionOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	svc, _ := newTestService(map[uuid.UUID]Data{
		a: dataFor("Med A"),
		b: dataFor("Med B"),
	})

	models, err := svc.BuildModels(context.Background(), []uuid.UUID{b, a})
	if err != nil {
		t.Fatalf("BuildModels: %v", err)
	}
	if len(models) != 2 || models[0].MedicationName != "Med B" || models[1].MedicationName != "Med A" {
		t.Errorf("selection order not preserved: %+v", models)
	}
}

func TestBuildModels_DuplicatesYieldSeparateLabels(t *testing.T) {
	a := uuid.New()
	svc, src := newTestService(map[uuid.UUID]Data{a: dataFor("Med A")})

	models, err := svc.BuildModels(context.Background(), []uuid.UUID{a, a, a})
	if err != nil {
		t.Fatalf("BuildModels: %v", err)
	}
	if len(models) != 3 {
		t.Errorf("expected 3 labels for a triplicated id, got %d", len(models))
	}
	// The store is only asked once per distinct id.
	if len(src.fetched) != 1 || len(src.fetched[0]) != 1 {
		t.Errorf("expected one deduplicated fetch, got %v", src.fetched)
	}
}

func TestBuildModels_SkipsMissingJoinData(t *testing.T) {
	a, ghost := uuid.New(), uuid.New()
	svc, _ := newTestService(map[uuid.UUID]Data{a: dataFor("Med A")})

	models, err := svc.BuildModels(context.Background(), []uuid.UUID{ghost, a})
	if err != nil {
		t.Fatalf("BuildModels: %v", err)
	}
	if len(models) != 1 || models[0].MedicationName != "Med A" {
		t.Errorf("expected the bad id to be skipped, got %+v", models)
	}
}

func TestBuildModels_EmptyCases(t *testing.T) {
	svc, _ := newTestService(nil)

	if _, err := svc.BuildModels(context.Background(), nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("nil ids: got %v, want ErrEmptySelection", err)
	}
	// All ids unresolvable also leaves nothing to print.
	if _, err := svc.BuildModels(context.Background(), []uuid.UUID{uuid.New()}); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("unresolvable ids: got %v, want ErrEmptySelection", err)
	}
}

func TestRender_EndToEnd(t *testing.T) {
	a := uuid.New()
	svc, _ := newTestService(map[uuid.UUID]Data{a: dataFor("Med A")})
	pv, _ := NewPrintViewRenderer()

	doc, err := svc.Render(context.Background(), pv, []uuid.UUID{a})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(doc.Data) == 0 {
		t.Error("expected rendered document")
	}
}
