package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-products/internal/model"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductUpdate lists the fields a full update may change. Nil fields are
// left as stored.
type ProductUpdate struct {
	Name         *string
	Price        *float64
	Availability *bool
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns every product, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0)
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func getByID(db *gorm.DB, id int64) (*model.Product, error) {
	var product model.Product
	err := db.First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching product %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts product and fills in its id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of update and returns the stored row.
func (r *ProductRepository) Update(ctx context.Context, id int64, update ProductUpdate) (*model.Product, error) {
	db := r.db.WithContext(ctx)

	product, err := getByID(db, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Availability != nil {
		product.Availability = *update.Availability
	}

	// Save writes every column, including a false availability.
	if err := db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return product, nil
}

// ToggleAvailability negates availability in storage and returns the
// updated row. Flip and re-read share one transaction, so concurrent
// toggles never lose a flip.
func (r *ProductRepository) ToggleAvailability(ctx context.Context, id int64) (*model.Product, error) {
	var product *model.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Product{}).
			Where("id = ?", id).
			Update("availability", gorm.Expr("NOT availability"))
		if result.Error != nil {
			return fmt.Errorf("toggling product %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		var err error
		product, err = getByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the row for good.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
