package label

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State names the workflow level the operator has reached. Each level
// depends on the one before it; changing an upstream choice resets
// everything downstream.
type State int

const (
	NoEstablishment State = iota
	EstablishmentChosen
	ResidentsChosen
	PrescriptionsChosen
)

func (s State) String() string {
	switch s {
	case NoEstablishment:
		return "no_establishment"
	case EstablishmentChosen:
		return "establishment_chosen"
	case ResidentsChosen:
		return "residents_chosen"
	case PrescriptionsChosen:
		return "prescriptions_chosen"
	default:
		return "unknown"
	}
}

// Option is one selectable entry at a workflow level.
type Option struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// ResidentLoader fetches the selectable residents of an establishment.
type ResidentLoader func(ctx context.Context, establishmentID uuid.UUID) ([]Option, error)

// PrescriptionLoader fetches the selectable prescriptions of a
// resident set.
type PrescriptionLoader func(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]Option, error)

// Workflow is the establishment → residents → prescriptions selection
// state machine. Loads run asynchronously; each level carries a
// generation counter so a fetch that completes after the operator has
// already moved on is discarded instead of clobbering newer state.
type Workflow struct {
	mu            sync.Mutex
	residents     ResidentLoader
	prescriptions PrescriptionLoader
	log           zerolog.Logger

	establishmentID uuid.UUID

	residentOptions []Option
	residentSel     []uuid.UUID
	loadingRes      bool
	genRes          uint64

	prescriptionOptions []Option
	prescriptionSel     []uuid.UUID
	loadingPres         bool
	genPres             uint64
	activeOnly          bool
}

func NewWorkflow(residents ResidentLoader, prescriptions PrescriptionLoader, log zerolog.Logger) *Workflow {
	return &Workflow{residents: residents, prescriptions: prescriptions, log: log}
}

// Snapshot is a point-in-time view of the workflow for the caller.
type Snapshot struct {
	State                State     `json:"-"`
	StateName            string    `json:"state"`
	EstablishmentID      uuid.UUID `json:"establishmentId,omitempty"`
	ResidentOptions      []Option  `json:"residentOptions"`
	SelectedResidents    []uuid.UUID `json:"selectedResidents"`
	LoadingResidents     bool      `json:"loadingResidents"`
	PrescriptionOptions  []Option  `json:"prescriptionOptions"`
	SelectedPrescriptions []uuid.UUID `json:"selectedPrescriptions"`
	LoadingPrescriptions bool      `json:"loadingPrescriptions"`
	ActiveOnly           bool      `json:"activeOnly"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.stateLocked()
	return Snapshot{
		State:                 st,
		StateName:             st.String(),
		EstablishmentID:       w.establishmentID,
		ResidentOptions:       append([]Option(nil), w.residentOptions...),
		SelectedResidents:     append([]uuid.UUID(nil), w.residentSel...),
		LoadingResidents:      w.loadingRes,
		PrescriptionOptions:   append([]Option(nil), w.prescriptionOptions...),
		SelectedPrescriptions: append([]uuid.UUID(nil), w.prescriptionSel...),
		LoadingPrescriptions:  w.loadingPres,
		ActiveOnly:            w.activeOnly,
	}
}

func (w *Workflow) stateLocked() State {
	switch {
	case w.establishmentID == uuid.Nil:
		return NoEstablishment
	case len(w.residentSel) == 0:
		return EstablishmentChosen
	case len(w.prescriptionSel) == 0:
		return ResidentsChosen
	default:
		return PrescriptionsChosen
	}
}

// State reports the current workflow level.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// ChooseEstablishment selects an establishment and starts loading its
// residents. All downstream selections and options reset immediately.
func (w *Workflow) ChooseEstablishment(ctx context.Context, id uuid.UUID) {
	w.mu.Lock()
	w.establishmentID = id
	w.residentOptions = nil
	w.residentSel = nil
	w.prescriptionOptions = nil
	w.prescriptionSel = nil
	w.genRes++
	gen := w.genRes
	w.loadingRes = id != uuid.Nil
	w.mu.Unlock()

	if id == uuid.Nil {
		return
	}
	go func() {
		opts, err := w.residents(ctx, id)
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.genRes {
			// A newer choice superseded this fetch.
			return
		}
		w.loadingRes = false
		if err != nil {
			w.log.Error().Err(err).Str("establishment_id", id.String()).
				Msg("resident load failed")
			return
		}
		w.residentOptions = opts
	}()
}

// SetActiveOnly switches the prescription filter and reloads the
// prescription level when residents are already selected.
func (w *Workflow) SetActiveOnly(ctx context.Context, activeOnly bool) {
	w.mu.Lock()
	if w.activeOnly == activeOnly {
		w.mu.Unlock()
		return
	}
	w.activeOnly = activeOnly
	sel := append([]uuid.UUID(nil), w.residentSel...)
	w.mu.Unlock()
	if len(sel) > 0 {
		w.reloadPrescriptions(ctx)
	}
}

// ToggleResident flips one resident in or out of the selection and
// reloads the prescription level for the new resident set.
func (w *Workflow) ToggleResident(ctx context.Context, id uuid.UUID) {
	w.mu.Lock()
	if !w.hasResidentOptionLocked(id) {
		w.mu.Unlock()
		return
	}
	idx := indexOf(w.residentSel, id)
	if idx >= 0 {
		w.residentSel = append(w.residentSel[:idx], w.residentSel[idx+1:]...)
	} else {
		w.residentSel = append(w.residentSel, id)
	}
	w.mu.Unlock()
	w.reloadPrescriptions(ctx)
}

// SelectAllResidents selects every available resident.
func (w *Workflow) SelectAllResidents(ctx context.Context) {
	w.mu.Lock()
	w.residentSel = w.residentSel[:0]
	for _, o := range w.residentOptions {
		w.residentSel = append(w.residentSel, o.ID)
	}
	w.mu.Unlock()
	w.reloadPrescriptions(ctx)
}

// DeselectAllResidents clears the resident selection and everything
// below it.
func (w *Workflow) DeselectAllResidents() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.residentSel = nil
	w.prescriptionOptions = nil
	w.prescriptionSel = nil
	w.genPres++
	w.loadingPres = false
}

// reloadPrescriptions refreshes the prescription options for the
// current resident selection. The prescription selection always
// resets: options from a previous resident set are never retained.
func (w *Workflow) reloadPrescriptions(ctx context.Context) {
	w.mu.Lock()
	w.prescriptionOptions = nil
	w.prescriptionSel = nil
	w.genPres++
	gen := w.genPres
	sel := append([]uuid.UUID(nil), w.residentSel...)
	activeOnly := w.activeOnly
	w.loadingPres = len(sel) > 0
	w.mu.Unlock()

	if len(sel) == 0 {
		return
	}
	go func() {
		opts, err := w.prescriptions(ctx, sel, activeOnly)
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.genPres {
			return
		}
		w.loadingPres = false
		if err != nil {
			w.log.Error().Err(err).Msg("prescription load failed")
			return
		}
		w.prescriptionOptions = opts
	}()
}

// TogglePrescription flips one prescription in or out of the
// selection. Selection order is preserved; it becomes render order.
func (w *Workflow) TogglePrescription(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasPrescriptionOptionLocked(id) {
		return
	}
	idx := indexOf(w.prescriptionSel, id)
	if idx >= 0 {
		w.prescriptionSel = append(w.prescriptionSel[:idx], w.prescriptionSel[idx+1:]...)
		return
	}
	w.prescriptionSel = append(w.prescriptionSel, id)
}

// SelectAllPrescriptions selects every available prescription in
// option order.
func (w *Workflow) SelectAllPrescriptions() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prescriptionSel = w.prescriptionSel[:0]
	for _, o := range w.prescriptionOptions {
		w.prescriptionSel = append(w.prescriptionSel, o.ID)
	}
}

// DeselectAllPrescriptions clears the prescription selection.
func (w *Workflow) DeselectAllPrescriptions() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prescriptionSel = nil
}

// Selection returns the prescription ids to render, in selection
// order, or ErrEmptySelection when the workflow has not reached
// PrescriptionsChosen.
func (w *Workflow) Selection() ([]uuid.UUID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stateLocked() != PrescriptionsChosen {
		return nil, ErrEmptySelection
	}
	return append([]uuid.UUID(nil), w.prescriptionSel...), nil
}

func (w *Workflow) hasResidentOptionLocked(id uuid.UUID) bool {
	for _, o := range w.residentOptions {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (w *Workflow) hasPrescriptionOptionLocked(id uuid.UUID) bool {
	for _, o := range w.prescriptionOptions {
		if o.ID == id {
			return true
		}
	}
	return false
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
