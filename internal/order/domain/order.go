package domain

import (
	"context"
	"errors"
	"time"
)

// Order statuses. Normal flow is processing, shipped, completed;
// cancelled is terminal. Transitions are not validated here: any known
// status may be written over any other.
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no items")
	ErrUnknownStatus = errors.New("unknown order status")
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized order line referencing a product by id.
type OrderItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount,omitempty"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
}

// LineTotal is the discounted price of the line.
func (i OrderItem) LineTotal() float64 {
	return i.Price * (1 - i.Discount/100) * float64(i.Quantity)
}

// ShippingInfo is the address captured at checkout.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZIP     string `json:"zip"`
	Country string `json:"country"`
	Notes   string `json:"notes,omitempty"`
}

// Order represents a placed order with customer fields denormalized from the
// user record at creation time.
type Order struct {
	ID                int          `json:"id"`
	UserID            string       `json:"user_id"`
	CustomerName      string       `json:"customer_name"`
	CustomerEmail     string       `json:"customer_email"`
	CustomerPhone     string       `json:"customer_phone,omitempty"`
	Items             []OrderItem  `json:"items"`
	Subtotal          float64      `json:"subtotal"`
	Shipping          float64      `json:"shipping"`
	Tax               float64      `json:"tax"`
	Discount          float64      `json:"discount"`
	Total             float64      `json:"total"`
	Status            string       `json:"status"`
	ShippingInfo      ShippingInfo `json:"shipping_info"`
	PaymentMethod     string       `json:"payment_method"`
	EstimatedDelivery time.Time    `json:"estimated_delivery"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// OrderRepository defines the contract for order data access.
type OrderRepository interface {
	FindByID(ctx context.Context, id int) (*Order, error)
	FindByUser(ctx context.Context, userID string) ([]Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	Count(ctx context.Context) (int, error)
}
