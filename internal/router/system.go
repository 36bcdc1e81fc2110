package router

import (
	"net/http"

	"github.com/deppfellow/go-products/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers health and documentation endpoints.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/docs", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	r.GET("/docs/*", h.OpenAPI.ServeOpenAPIUI)
}
