package prescription

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/pdalabel/pdalabel/pkg/pagination"
)

// Handler exposes prescription endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/prescriptions", h.List)
	api.GET("/prescriptions/by-residents", h.ListByResidents)
	api.POST("/prescriptions", h.Create)
	api.GET("/prescriptions/:id", h.Get)
	api.PUT("/prescriptions/:id", h.Update)
	api.DELETE("/prescriptions/:id", h.Delete)
	api.GET("/medications/:id/prescription-count", h.CountByMedication)
}

// prescriptionJSON adds the computed activity status to API responses.
type prescriptionJSON struct {
	*Prescription
	Active bool `json:"active"`
}

func withActive(p *Prescription, now time.Time) prescriptionJSON {
	return prescriptionJSON{Prescription: p, Active: p.Active(now)}
}

func withActiveAll(ps []*Prescription, now time.Time) []prescriptionJSON {
	out := make([]prescriptionJSON, len(ps))
	for i, p := range ps {
		out[i] = withActive(p, now)
	}
	return out
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(withActiveAll(items, time.Now()), total, p))
}

func (h *Handler) ListByResidents(c echo.Context) error {
	rawIDs := c.QueryParam("residentIds")
	if rawIDs == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "residentIds is required")
	}
	var ids []uuid.UUID
	for _, s := range strings.Split(rawIDs, ",") {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid resident id: "+s)
		}
		ids = append(ids, id)
	}

	rawActive := c.QueryParam("activeOnly")
	if rawActive == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "activeOnly is required")
	}
	activeOnly, err := strconv.ParseBool(rawActive)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "activeOnly must be a boolean")
	}

	items, err := h.svc.ListByResidents(c.Request().Context(), ids, activeOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	return c.JSON(http.StatusOK, withActiveAll(items, time.Now()))
}

func (h *Handler) Create(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, withActive(&p, time.Now()))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, withActive(p, time.Now()))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, withActive(&p, time.Now()))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete prescription")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) CountByMedication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medication id")
	}
	n, err := h.svc.CountByMedication(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count prescriptions")
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}
