// Package web serves the embedded single-page dashboard. The page talks to
// the JSON API and renders the network and chart views in the browser.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static
var staticFS embed.FS

// Register mounts the dashboard at the server root.
func Register(e *echo.Echo) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	e.GET("/", func(c echo.Context) error {
		page, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "dashboard not bundled")
		}
		return c.HTMLBlob(http.StatusOK, page)
	})
	e.StaticFS("/static", sub)
}
