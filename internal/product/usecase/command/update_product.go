package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/product/domain"
)

// UpdateProductCommand merges the provided fields into an existing product.
// Nil pointers mean "leave unchanged".
type UpdateProductCommand struct {
	ID          int
	Name        *string
	Price       *float64
	Discount    *float64
	Rating      *float64
	Category    *string
	InStock     *bool
	Unit        *string
	Description *string
	Image       *string
}

// UpdateProductHandler handles product updates
type UpdateProductHandler struct {
	repo domain.ProductRepository
	bus  *events.Bus
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository, bus *events.Bus) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo, bus: bus}
}

// Handle executes the update product command. Seed records are refused
// before any change is applied.
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if product.IsProtected() {
		return nil, domain.ErrProtectedRecord
	}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			return nil, fmt.Errorf("product name is required")
		}
		product.Name = *cmd.Name
	}
	if cmd.Price != nil {
		if *cmd.Price <= 0 {
			return nil, fmt.Errorf("price must be positive")
		}
		product.Price = *cmd.Price
	}
	if cmd.Discount != nil {
		if *cmd.Discount < 0 || *cmd.Discount > 100 {
			return nil, fmt.Errorf("discount must be between 0 and 100")
		}
		product.Discount = *cmd.Discount
	}
	if cmd.Rating != nil {
		product.Rating = *cmd.Rating
	}
	if cmd.Category != nil {
		product.Category = *cmd.Category
	}
	if cmd.InStock != nil {
		product.InStock = *cmd.InStock
	}
	if cmd.Unit != nil {
		product.Unit = *cmd.Unit
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Image != nil {
		product.Image = *cmd.Image
	}

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeProductUpdated,
		Collection: "products",
		EntityID:   strconv.Itoa(product.ID),
	})

	return product, nil
}
