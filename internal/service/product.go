package service

import (
	"context"
	"errors"

	"github.com/deppfellow/go-products/internal/errs"
	"github.com/deppfellow/go-products/internal/model"
	"github.com/deppfellow/go-products/internal/repository"
	"github.com/deppfellow/go-products/internal/server"
)

const (
	// ProductNotFoundMessage is the 404 message for every product route.
	ProductNotFoundMessage = "Producto no Encontrado"

	// ProductDeletedMessage is the payload of a successful delete.
	ProductDeletedMessage = "Producto eliminado de la base de datos."
)

var productNotFoundCode = "PRODUCT_NOT_FOUND"

// ProductStore is the storage the service needs.
type ProductStore interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id int64, update repository.ProductUpdate) (*model.Product, error)
	ToggleAvailability(ctx context.Context, id int64) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductService struct {
	server *server.Server
	store  ProductStore
}

func NewProductService(s *server.Server, store ProductStore) *ProductService {
	return &ProductService{
		server: s,
		store:  store,
	}
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.store.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	return product, notFound(err)
}

// Create stores a new product. New products are always available.
func (s *ProductService) Create(ctx context.Context, name string, price float64) (*model.Product, error) {
	product := &model.Product{
		Name:         name,
		Price:        price,
		Availability: true,
	}

	if err := s.store.Create(ctx, product); err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Int64("product_id", product.ID).
		Msg("product created")

	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, update repository.ProductUpdate) (*model.Product, error) {
	product, err := s.store.Update(ctx, id, update)
	return product, notFound(err)
}

func (s *ProductService) ToggleAvailability(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.store.ToggleAvailability(ctx, id)
	return product, notFound(err)
}

func (s *ProductService) Delete(ctx context.Context, id int64) (string, error) {
	if err := notFound(s.store.Delete(ctx, id)); err != nil {
		return "", err
	}

	s.server.Logger.Info().
		Int64("product_id", id).
		Msg("product deleted")

	return ProductDeletedMessage, nil
}

// notFound maps ErrProductNotFound to the API's 404. Other errors pass
// through for the global error handler.
func notFound(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return errs.NewNotFoundError(ProductNotFoundMessage, true, &productNotFoundCode)
	}
	return err
}
