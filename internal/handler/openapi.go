package handler

import (
	"github.com/deppfellow/go-products/internal/server"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the generated OpenAPI document with swag.
	_ "github.com/deppfellow/go-products/docs"
)

// OpenAPIHandler serves Swagger UI and the generated document under /docs.
type OpenAPIHandler struct {
	Handler
	ui echo.HandlerFunc
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		ui: echoSwagger.EchoWrapHandler(
			echoSwagger.URL("/docs/doc.json"),
			echoSwagger.DocExpansion("list"),
		),
	}
}

// ServeOpenAPIUI serves /docs/index.html, /docs/doc.json and the UI assets.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return h.ui(c)
}
