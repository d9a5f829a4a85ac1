package explore

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pelingenc/coco/internal/domain/dataset"
)

// Handler provides REST endpoints for the network and chart views.
type Handler struct {
	svc *Service
}

// NewHandler creates a new explore handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers explore routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	ds := api.Group("/datasets")
	ds.GET("/:id/graph", h.Graph)
	ds.GET("/:id/charts", h.Charts)
}

// Graph handles GET /api/v1/datasets/:id/graph
func (h *Handler) Graph(c echo.Context) error {
	g, err := h.svc.Graph(c.Param("id"), paramsFromQuery(c))
	if err != nil {
		return exploreError(err)
	}
	return c.JSON(http.StatusOK, g)
}

// Charts handles GET /api/v1/datasets/:id/charts
func (h *Handler) Charts(c echo.Context) error {
	resp, err := h.svc.Charts(c.Param("id"), paramsFromQuery(c))
	if err != nil {
		return exploreError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func paramsFromQuery(c echo.Context) GraphParams {
	return GraphParams{
		Code:      c.QueryParam("code"),
		Level:     intQuery(c, "level"),
		TopN:      intQuery(c, "top"),
		Neighbors: intQuery(c, "neighbors"),
		Labels:    c.QueryParam("labels") != "false",
		Highlight: c.QueryParam("highlight"),
	}
}

func intQuery(c echo.Context, name string) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// exploreError maps missing sessions to 404 and everything else, such as a
// code outside the dataset, to 400.
func exploreError(err error) error {
	if errors.Is(err, dataset.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
