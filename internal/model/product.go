// Package model holds the persisted domain types.
package model

import "time"

// Product is a catalog entry. Price is always greater than zero and new
// products start out available.
type Product struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement" example:"1"`
	Name         string    `json:"name" gorm:"size:100;not null" example:"Monitor Curvo de 49 Pulgadas"`
	Price        float64   `json:"price" gorm:"not null;check:products_price_check,price > 0" example:"300"`
	Availability bool      `json:"availability" gorm:"not null;default:true" example:"true"`
	CreatedAt    time.Time `json:"createdAt" example:"2024-01-01T00:00:00Z"`
	UpdatedAt    time.Time `json:"updatedAt" example:"2024-01-01T00:00:00Z"`
}

func (Product) TableName() string {
	return "products"
}
