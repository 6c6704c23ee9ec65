package label

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pdalabel/pdalabel/internal/platform/auth"
)

// WorkflowRegistry holds one selection workflow per operator. Two
// operators printing concurrently never share selection state.
type WorkflowRegistry struct {
	mu            sync.Mutex
	workflows     map[string]*Workflow
	residents     ResidentLoader
	prescriptions PrescriptionLoader
	log           zerolog.Logger
}

func NewWorkflowRegistry(residents ResidentLoader, prescriptions PrescriptionLoader, log zerolog.Logger) *WorkflowRegistry {
	return &WorkflowRegistry{
		workflows:     make(map[string]*Workflow),
		residents:     residents,
		prescriptions: prescriptions,
		log:           log,
	}
}

func (r *WorkflowRegistry) get(userID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[userID]
	if !ok {
		w = NewWorkflow(r.residents, r.prescriptions, r.log)
		r.workflows[userID] = w
	}
	return w
}

// WorkflowHandler exposes the selection workflow over HTTP and feeds
// its final selection into the render endpoints.
type WorkflowHandler struct {
	registry *WorkflowRegistry
	labels   *Handler
}

func NewWorkflowHandler(registry *WorkflowRegistry, labels *Handler) *WorkflowHandler {
	return &WorkflowHandler{registry: registry, labels: labels}
}

func (h *WorkflowHandler) RegisterRoutes(api *echo.Group) {
	wf := api.Group("/labels/workflow")
	wf.GET("", h.Snapshot)
	wf.POST("/establishment", h.ChooseEstablishment)
	wf.POST("/active-only", h.SetActiveOnly)
	wf.POST("/residents/toggle", h.ToggleResident)
	wf.POST("/residents/select-all", h.SelectAllResidents)
	wf.POST("/residents/deselect-all", h.DeselectAllResidents)
	wf.POST("/prescriptions/toggle", h.TogglePrescription)
	wf.POST("/prescriptions/select-all", h.SelectAllPrescriptions)
	wf.POST("/prescriptions/deselect-all", h.DeselectAllPrescriptions)
	wf.POST("/render", h.RenderSelection)
}

func (h *WorkflowHandler) workflow(c echo.Context) *Workflow {
	return h.registry.get(auth.UserIDFromContext(c.Request().Context()))
}

type idRequest struct {
	ID uuid.UUID `json:"id"`
}

func (h *WorkflowHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, h.workflow(c).Snapshot())
}

func (h *WorkflowHandler) ChooseEstablishment(c echo.Context) error {
	var req idRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w := h.workflow(c)
	// The load outlives this request; it is tied to the server, not
	// the triggering HTTP call.
	w.ChooseEstablishment(context.Background(), req.ID)
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) SetActiveOnly(c echo.Context) error {
	var req struct {
		ActiveOnly bool `json:"activeOnly"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w := h.workflow(c)
	w.SetActiveOnly(context.Background(), req.ActiveOnly)
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) ToggleResident(c echo.Context) error {
	var req idRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w := h.workflow(c)
	w.ToggleResident(context.Background(), req.ID)
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) SelectAllResidents(c echo.Context) error {
	w := h.workflow(c)
	w.SelectAllResidents(context.Background())
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) DeselectAllResidents(c echo.Context) error {
	w := h.workflow(c)
	w.DeselectAllResidents()
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) TogglePrescription(c echo.Context) error {
	var req idRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w := h.workflow(c)
	w.TogglePrescription(req.ID)
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) SelectAllPrescriptions(c echo.Context) error {
	w := h.workflow(c)
	w.SelectAllPrescriptions()
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *WorkflowHandler) DeselectAllPrescriptions(c echo.Context) error {
	w := h.workflow(c)
	w.DeselectAllPrescriptions()
	return c.JSON(http.StatusOK, w.Snapshot())
}

// render prints the workflow's current selection with the requested
// backend.
func (h *WorkflowHandler) RenderSelection(c echo.Context) error {
	var req struct {
		Backend string `json:"backend"`
		Style   string `json:"style,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ids, err := h.workflow(c).Selection()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptySelection.Error())
	}

	var renderer Renderer
	switch req.Backend {
	case "", "pdf":
		renderer = h.labels.banded
		if req.Style == string(StylePlain) {
			renderer = h.labels.plain
		}
	case "raster":
		renderer = h.labels.raster
	case "print-view":
		renderer = h.labels.printView
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown render backend")
	}
	return h.labels.render(c, renderer, ids)
}
