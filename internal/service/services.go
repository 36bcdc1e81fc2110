// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives bound
// request values, applies product rules and turns storage outcomes into
// API errors.
package service

import (
	"github.com/deppfellow/go-products/internal/repository"
	"github.com/deppfellow/go-products/internal/server"
)

type Services struct {
	Product *ProductService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Product: NewProductService(s, repos.Product),
	}
}
