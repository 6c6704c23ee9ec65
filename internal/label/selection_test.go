package label

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// blockingLoaders lets a test hold a fetch open to exercise the
// loading sub-states and stale-fetch discard.
type blockingLoaders struct {
	mu            sync.Mutex
	residents     map[uuid.UUID][]Option
	prescriptions map[uuid.UUID][]Option
	gate          chan struct{}
}

func newLoaders() *blockingLoaders {
	return &blockingLoaders{
		residents:     make(map[uuid.UUID][]Option),
		prescriptions: make(map[uuid.UUID][]Option),
	}
}

func (l *blockingLoaders) loadResidents(ctx context.Context, estID uuid.UUID) ([]Option, error) {
	l.mu.Lock()
	gate := l.gate
	opts := l.residents[estID]
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return opts, nil
}

func (l *blockingLoaders) loadPrescriptions(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]Option, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var opts []Option
	for _, id := range residentIDs {
		opts = append(opts, l.prescriptions[id]...)
	}
	return opts, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func seededWorkflow(t *testing.T) (*Workflow, uuid.UUID, []Option, []Option) {
	t.Helper()
	loaders := newLoaders()
	estID := uuid.New()
	resA, resB := Option{ID: uuid.New(), Label: "Martin Alice"}, Option{ID: uuid.New(), Label: "Dupont Bernard"}
	loaders.residents[estID] = []Option{resA, resB}
	presA1 := Option{ID: uuid.New(), Label: "Paracetamol"}
	presA2 := Option{ID: uuid.New(), Label: "Ibuprofen"}
	loaders.prescriptions[resA.ID] = []Option{presA1, presA2}

	w := NewWorkflow(loaders.loadResidents, loaders.loadPrescriptions, zerolog.Nop())
	w.ChooseEstablishment(context.Background(), estID)
	waitFor(t, func() bool { return !w.Snapshot().LoadingResidents })
	return w, estID, []Option{resA, resB}, []Option{presA1, presA2}
}

func TestWorkflow_InitialState(t *testing.T) {
	w := NewWorkflow(nil, nil, zerolog.Nop())
	if w.State() != NoEstablishment {
		t.Errorf("initial state = %v", w.State())
	}
	if _, err := w.Selection(); !errors.Is(err, ErrEmptySelection) {
		t.Error("selection must be refused before any choice")
	}
}

func TestWorkflow_FullPath(t *testing.T) {
	w, _, residents, prescriptions := seededWorkflow(t)

	if w.State() != EstablishmentChosen {
		t.Fatalf("state after establishment = %v", w.State())
	}
	if got := len(w.Snapshot().ResidentOptions); got != 2 {
		t.Fatalf("resident options = %d", got)
	}

	w.ToggleResident(context.Background(), residents[0].ID)
	waitFor(t, func() bool { return !w.Snapshot().LoadingPrescriptions })
	if w.State() != ResidentsChosen {
		t.Fatalf("state after resident toggle = %v", w.State())
	}
	if got := len(w.Snapshot().PrescriptionOptions); got != 2 {
		t.Fatalf("prescription options = %d", got)
	}

	// Select in reverse option order; render order follows selection.
	w.TogglePrescription(prescriptions[1].ID)
	w.TogglePrescription(prescriptions[0].ID)
	if w.State() != PrescriptionsChosen {
		t.Fatalf("state after prescription toggles = %v", w.State())
	}
	sel, err := w.Selection()
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(sel) != 2 || sel[0] != prescriptions[1].ID || sel[1] != prescriptions[0].ID {
		t.Errorf("selection order not preserved: %v", sel)
	}
}

func TestWorkflow_ToggleSemantics(t *testing.T) {
	w, _, residents, prescriptions := seededWorkflow(t)

	w.ToggleResident(context.Background(), residents[0].ID)
	waitFor(t, func() bool { return !w.Snapshot().LoadingPrescriptions })

	w.TogglePrescription(prescriptions[0].ID)
	w.TogglePrescription(prescriptions[0].ID) // toggle off again
	if _, err := w.Selection(); !errors.Is(err, ErrEmptySelection) {
		t.Error("double toggle must leave the selection empty")
	}

	// Unknown ids are ignored.
	w.TogglePrescription(uuid.New())
	if _, err := w.Selection(); !errors.Is(err, ErrEmptySelection) {
		t.Error("unknown prescription id must not enter the selection")
	}
}

func TestWorkflow_SelectAllDeselectAll(t *testing.T) {
	w, _, _, prescriptions := seededWorkflow(t)

	w.SelectAllResidents(context.Background())
	waitFor(t, func() bool { return !w.Snapshot().LoadingPrescriptions })
	if got := len(w.Snapshot().SelectedResidents); got != 2 {
		t.Fatalf("selected residents after select-all = %d", got)
	}

	w.SelectAllPrescriptions()
	sel, err := w.Selection()
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(sel) != len(prescriptions) {
		t.Errorf("select-all picked %d prescriptions, want %d", len(sel), len(prescriptions))
	}

	w.DeselectAllPrescriptions()
	if _, err := w.Selection(); !errors.Is(err, ErrEmptySelection) {
		t.Error("deselect-all must clear the render set")
	}

	w.DeselectAllResidents()
	if w.State() != EstablishmentChosen {
		t.Errorf("state after resident deselect-all = %v", w.State())
	}
}

func TestWorkflow_EstablishmentChangeResetsDownstream(t *testing.T) {
	w, _, residents, prescriptions := seededWorkflow(t)

	w.ToggleResident(context.Background(), residents[0].ID)
	waitFor(t, func() bool { return !w.Snapshot().LoadingPrescriptions })
	w.TogglePrescription(prescriptions[0].ID)

	w.ChooseEstablishment(context.Background(), uuid.New())
	snap := w.Snapshot()
	if len(snap.SelectedResidents) != 0 || len(snap.SelectedPrescriptions) != 0 {
		t.Error("downstream selections must reset on establishment change")
	}
	if len(snap.PrescriptionOptions) != 0 {
		t.Error("stale prescription options must not survive an establishment change")
	}
}

func TestWorkflow_StaleResidentFetchDiscarded(t *testing.T) {
	loaders := newLoaders()
	oldEst, newEst := uuid.New(), uuid.New()
	oldResident := Option{ID: uuid.New(), Label: "Old Resident"}
	newResident := Option{ID: uuid.New(), Label: "New Resident"}
	loaders.residents[oldEst] = []Option{oldResident}
	loaders.residents[newEst] = []Option{newResident}

	w := NewWorkflow(loaders.loadResidents, loaders.loadPrescriptions, zerolog.Nop())

	// Hold the first fetch open while a second choice supersedes it.
	gate := make(chan struct{})
	loaders.mu.Lock()
	loaders.gate = gate
	loaders.mu.Unlock()
	w.ChooseEstablishment(context.Background(), oldEst)

	loaders.mu.Lock()
	loaders.gate = nil
	loaders.mu.Unlock()
	w.ChooseEstablishment(context.Background(), newEst)
	waitFor(t, func() bool { return len(w.Snapshot().ResidentOptions) == 1 })

	close(gate) // the stale fetch now completes, and must be dropped
	time.Sleep(20 * time.Millisecond)

	snap := w.Snapshot()
	if len(snap.ResidentOptions) != 1 || snap.ResidentOptions[0].ID != newResident.ID {
		t.Errorf("stale fetch clobbered newer options: %+v", snap.ResidentOptions)
	}
}
