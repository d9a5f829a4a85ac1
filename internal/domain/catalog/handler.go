package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pelingenc/coco/pkg/pagination"
)

// Handler provides REST endpoints for catalog search and status.
type Handler struct {
	svc *Service
}

// NewHandler creates a new catalog handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers catalog routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	cat := api.Group("/catalog")
	cat.GET("/status", h.Status)
	cat.GET("/icd", h.SearchICD)
	cat.GET("/ops", h.SearchOPS)
	cat.GET("/loinc", h.SearchLOINC)
}

// Status handles GET /api/v1/catalog/status
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Status())
}

// SearchICD handles GET /api/v1/catalog/icd?q=...
func (h *Handler) SearchICD(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	p := pagination.FromContext(c)
	results, err := h.svc.SearchICD(c.Request().Context(), query, p.Offset+p.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lo, hi := p.Slice(len(results))
	return c.JSON(http.StatusOK, pagination.NewResponse(results[lo:hi], len(results), p.Limit, p.Offset))
}

// SearchOPS handles GET /api/v1/catalog/ops?q=...
func (h *Handler) SearchOPS(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	p := pagination.FromContext(c)
	results, err := h.svc.SearchOPS(c.Request().Context(), query, p.Offset+p.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lo, hi := p.Slice(len(results))
	return c.JSON(http.StatusOK, pagination.NewResponse(results[lo:hi], len(results), p.Limit, p.Offset))
}

// SearchLOINC handles GET /api/v1/catalog/loinc?q=...
func (h *Handler) SearchLOINC(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}
	p := pagination.FromContext(c)
	results, err := h.svc.SearchLOINC(c.Request().Context(), query, p.Offset+p.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lo, hi := p.Slice(len(results))
	return c.JSON(http.StatusOK, pagination.NewResponse(results[lo:hi], len(results), p.Limit, p.Offset))
}
