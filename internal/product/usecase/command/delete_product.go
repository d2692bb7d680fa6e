package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/product/domain"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ID int
}

// DeleteProductHandler handles product deletion
type DeleteProductHandler struct {
	repo domain.ProductRepository
	bus  *events.Bus
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository, bus *events.Bus) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo, bus: bus}
}

// Handle executes the delete product command. Seed records are refused.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if product.IsProtected() {
		return domain.ErrProtectedRecord
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeProductDeleted,
		Collection: "products",
		EntityID:   strconv.Itoa(cmd.ID),
	})

	return nil
}
