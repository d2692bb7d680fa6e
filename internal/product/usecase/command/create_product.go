package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/product/domain"
)

// CreateProductCommand represents the command to create a catalog product
type CreateProductCommand struct {
	Name        string
	Price       float64
	Discount    float64
	Rating      float64
	Category    string
	InStock     bool
	Unit        string
	Description string
	Image       string
}

// CreateProductHandler handles product creation
type CreateProductHandler struct {
	repo domain.ProductRepository
	bus  *events.Bus
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository, bus *events.Bus) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, bus: bus}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if cmd.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if cmd.Discount < 0 || cmd.Discount > 100 {
		return nil, fmt.Errorf("discount must be between 0 and 100")
	}
	if cmd.Category == "" {
		return nil, fmt.Errorf("category is required")
	}

	now := time.Now()
	product := &domain.Product{
		Name:        cmd.Name,
		Price:       cmd.Price,
		Discount:    cmd.Discount,
		Rating:      cmd.Rating,
		Category:    cmd.Category,
		InStock:     cmd.InStock,
		Unit:        cmd.Unit,
		Description: cmd.Description,
		Image:       cmd.Image,
		IsEditable:  true,
		CreatedBy:   domain.CreatedByUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeProductCreated,
		Collection: "products",
		EntityID:   strconv.Itoa(product.ID),
	})

	return product, nil
}
