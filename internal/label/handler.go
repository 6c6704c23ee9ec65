package label

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Handler exposes the label generation endpoints. The model endpoint
// serves clients that render labels themselves; the document
// endpoints render server-side.
type Handler struct {
	svc       *Service
	banded    *PDFRenderer
	plain     *PDFRenderer
	raster    *RasterRenderer
	printView *PrintViewRenderer
}

func NewHandler(svc *Service, banded, plain *PDFRenderer, raster *RasterRenderer, printView *PrintViewRenderer) *Handler {
	return &Handler{svc: svc, banded: banded, plain: plain, raster: raster, printView: printView}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/labels/models", h.Models)
	api.POST("/labels/pdf", h.PDF)
	api.POST("/labels/raster-pdf", h.RasterPDF)
	api.POST("/labels/print-view", h.PrintView)
}

type renderRequest struct {
	PrescriptionIDs []uuid.UUID `json:"prescriptionIds"`
	Style           string      `json:"style,omitempty"`
}

func (h *Handler) bindIDs(c echo.Context) (*renderRequest, error) {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return &req, nil
}

func (h *Handler) Models(c echo.Context) error {
	req, err := h.bindIDs(c)
	if err != nil {
		return err
	}
	models, err := h.svc.BuildModels(c.Request().Context(), req.PrescriptionIDs)
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrEmptySelection.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build label models")
	}
	return c.JSON(http.StatusOK, models)
}

func (h *Handler) PDF(c echo.Context) error {
	req, err := h.bindIDs(c)
	if err != nil {
		return err
	}
	renderer := h.banded
	switch req.Style {
	case "", string(StyleBanded):
	case string(StylePlain):
		renderer = h.plain
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown label style")
	}
	return h.render(c, renderer, req.PrescriptionIDs)
}

func (h *Handler) RasterPDF(c echo.Context) error {
	req, err := h.bindIDs(c)
	if err != nil {
		return err
	}
	return h.render(c, h.raster, req.PrescriptionIDs)
}

func (h *Handler) PrintView(c echo.Context) error {
	req, err := h.bindIDs(c)
	if err != nil {
		return err
	}
	return h.render(c, h.printView, req.PrescriptionIDs)
}

func (h *Handler) render(c echo.Context, r Renderer, ids []uuid.UUID) error {
	doc, err := h.svc.Render(c.Request().Context(), r, ids)
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrEmptySelection.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render labels")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}
