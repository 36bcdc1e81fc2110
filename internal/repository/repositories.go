// Package repository handles all interactions with the database.
//
// It holds the gorm queries behind each product operation, keeping
// storage details away from the service layer.
package repository

import (
	"github.com/deppfellow/go-products/internal/server"
)

type Repositories struct {
	Product *ProductRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Product: NewProductRepository(s.DB.DB),
	}
}
