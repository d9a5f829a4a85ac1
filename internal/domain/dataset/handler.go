package dataset

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Handler provides REST endpoints for dataset uploads and sessions.
type Handler struct {
	svc *Service
}

// NewHandler creates a new dataset handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers dataset routes on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	ds := api.Group("/datasets")
	ds.POST("", h.Upload)
	ds.GET("/:id", h.Get)
	ds.GET("/:id/codes", h.Codes)
	ds.DELETE("/:id", h.Delete)
}

// uploadResponse is what the dashboard needs to populate its controls.
type uploadResponse struct {
	Summary Summary  `json:"summary"`
	Codes   []string `json:"codes"`
}

// Upload handles POST /api/v1/datasets with a multipart parquet file.
func (h *Handler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field 'file' is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	// The parquet reader needs random access, so spool to a temp file.
	tmp, err := os.CreateTemp("", "coco-upload-*.parquet")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot buffer upload")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot buffer upload")
	}

	sess, err := h.svc.Upload(c.Request().Context(), tmp.Name(), filepath.Base(fileHeader.Filename))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, uploadResponse{Summary: sess.Summary, Codes: sess.Codes})
}

// Get handles GET /api/v1/datasets/:id
func (h *Handler) Get(c echo.Context) error {
	sess, err := h.svc.Get(c.Param("id"))
	if err != nil {
		return notFoundOr500(err)
	}
	return c.JSON(http.StatusOK, sess.Summary)
}

// Codes handles GET /api/v1/datasets/:id/codes
func (h *Handler) Codes(c echo.Context) error {
	codes, err := h.svc.Codes(c.Param("id"))
	if err != nil {
		return notFoundOr500(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"codes": codes})
}

// Delete handles DELETE /api/v1/datasets/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		return notFoundOr500(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func notFoundOr500(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
