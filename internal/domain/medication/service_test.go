package medication

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Medication
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Medication)}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	if _, ok := m.items[med.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.items[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.items {
		result = append(result, med)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.items {
		if strings.Contains(strings.ToLower(med.Name), strings.ToLower(query)) {
			result = append(result, med)
		}
	}
	return result, len(result), nil
}

type mockPurger struct {
	purged []uuid.UUID
	fail   bool
}

func (m *mockPurger) DeleteByMedication(_ context.Context, id uuid.UUID) (int, error) {
	if m.fail {
		return 0, errors.New("purge failed")
	}
	m.purged = append(m.purged, id)
	return 2, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newService() (*Service, *mockRepo, *mockPurger) {
	repo := newMockRepo()
	purger := &mockPurger{}
	return NewService(repo, purger, passthroughTx), repo, purger
}

// -- Tests --

func TestCreate_RequiresName(t *testing.T) {
	svc, _, _ := newService()
	if err := svc.Create(context.Background(), &Medication{Name: "  "}); err == nil {
		t.Fatal("expected validation error for blank name")
	}
}

func TestCreate_OK(t *testing.T) {
	svc, _, _ := newService()
	m := &Medication{Name: " Paracetamol 500mg "}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Name != "Paracetamol 500mg" {
		t.Errorf("expected trimmed name, got %q", m.Name)
	}
}

func TestList_SearchesWhenQueryGiven(t *testing.T) {
	svc, repo, _ := newService()
	for _, name := range []string{"Paracetamol 500mg", "Ibuprofen 200mg", "Paracetamol 1g"} {
		if err := repo.Create(context.Background(), &Medication{Name: name}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, total, err := svc.List(context.Background(), "paracetamol", 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 matches, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(context.Background(), "", 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Errorf("expected full catalog without query, got %d", total)
	}
	_ = items
}

func TestDelete_CascadesPrescriptions(t *testing.T) {
	svc, repo, purger := newService()
	m := &Medication{Name: "Paracetamol 500mg"}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != m.ID {
		t.Errorf("expected prescriptions purged for %s, got %v", m.ID, purger.purged)
	}
}

func TestDelete_PurgeFailureKeepsMedication(t *testing.T) {
	svc, repo, purger := newService()
	purger.fail = true
	m := &Medication{Name: "Paracetamol 500mg"}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID); err == nil {
		t.Fatal("expected error from failed purge")
	}
	if _, err := repo.GetByID(context.Background(), m.ID); err != nil {
		t.Error("medication should survive a failed purge")
	}
}
