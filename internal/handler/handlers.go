// Package handler is the HTTP layer after the router.
//
// Handlers receive requests whose params and body already passed the
// route's rule chains, bind them into typed requests, call the service
// layer and write the JSON envelope.
package handler

import (
	"github.com/deppfellow/go-products/internal/server"
	"github.com/deppfellow/go-products/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Product *ProductHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Product: NewProductHandler(s, services.Product),
	}
}
