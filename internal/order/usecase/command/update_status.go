package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/order/domain"
)

// UpdateStatusCommand represents the command to set an order's status
type UpdateStatusCommand struct {
	OrderID int
	Status  string
}

// UpdateStatusHandler handles order status changes
type UpdateStatusHandler struct {
	repo domain.OrderRepository
	bus  *events.Bus
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(repo domain.OrderRepository, bus *events.Bus) *UpdateStatusHandler {
	return &UpdateStatusHandler{repo: repo, bus: bus}
}

// Handle executes the update status command. The status value must be known;
// the transition itself is not restricted.
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if !domain.ValidStatus(cmd.Status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStatus, cmd.Status)
	}

	order, err := h.repo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	order.Status = cmd.Status
	if err := h.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeOrderUpdated,
		Collection: "orders",
		EntityID:   strconv.Itoa(order.ID),
	})

	return order, nil
}
