package domain

import (
	"context"
	"errors"
	"time"
)

// Record provenance. Seed records ship with the application and are protected
// from user edits; user records are freely editable.
const (
	CreatedByOriginal = "original"
	CreatedByUser     = "user"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrProtectedRecord = errors.New("original products cannot be modified or deleted")
)

// Product represents a catalog entry.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount,omitempty"` // percentage, 0-100
	Rating      float64   `json:"rating"`
	Category    string    `json:"category"`
	InStock     bool      `json:"in_stock"`
	Unit        string    `json:"unit"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	IsEditable  bool      `json:"is_editable"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsProtected reports whether the record is seed data that must not be
// mutated or deleted.
func (p *Product) IsProtected() bool {
	return !p.IsEditable || p.CreatedBy == CreatedByOriginal
}

// DiscountedPrice applies the discount percentage to the unit price.
func (p *Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

// ProductRepository defines the contract for product data access. All lookups
// are linear scans over the persisted collection.
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	FindByCategory(ctx context.Context, category string) ([]Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}
