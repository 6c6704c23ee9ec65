package export

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pdalabel/pdalabel/internal/platform/auth"
)

// Handler exposes the register download, restricted to
// administrators.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/prescriptions/export", h.Download, auth.RequireAdmin())
}

func (h *Handler) Download(c echo.Context) error {
	data, err := h.svc.Build(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build export")
	}
	filename := "prescriptions-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
