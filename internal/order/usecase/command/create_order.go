package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/order/domain"
	userdomain "github.com/tair/storefront/internal/user/domain"
)

// CreateOrderCommand represents the command to place an order from a cart
// snapshot. The caller must be authenticated; customer fields are
// denormalized from the user record, not taken from the request.
type CreateOrderCommand struct {
	UserID        string
	Items         []domain.OrderItem
	ShippingInfo  domain.ShippingInfo
	PaymentMethod string
}

// CreateOrderHandler handles order placement
type CreateOrderHandler struct {
	orders domain.OrderRepository
	users  userdomain.UserRepository
	bus    *events.Bus
}

// NewCreateOrderHandler creates a new create order handler
func NewCreateOrderHandler(orders domain.OrderRepository, users userdomain.UserRepository, bus *events.Bus) *CreateOrderHandler {
	return &CreateOrderHandler{orders: orders, users: users, bus: bus}
}

// Handle executes the create order command. Totals are always recomputed
// server-side from the submitted lines.
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, item := range cmd.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item %q has non-positive quantity", item.Name)
		}
	}
	if cmd.ShippingInfo.Address == "" {
		return nil, fmt.Errorf("shipping address is required")
	}
	if cmd.PaymentMethod == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	user, err := h.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	totals := domain.CalculateTotals(cmd.Items)
	now := time.Now()
	order := &domain.Order{
		UserID:            user.ID,
		CustomerName:      user.FullName(),
		CustomerEmail:     user.Email,
		CustomerPhone:     user.Phone,
		Items:             cmd.Items,
		Subtotal:          totals.Subtotal,
		Shipping:          totals.Shipping,
		Tax:               totals.Tax,
		Discount:          totals.Discount,
		Total:             totals.Total,
		Status:            domain.StatusProcessing,
		ShippingInfo:      cmd.ShippingInfo,
		PaymentMethod:     cmd.PaymentMethod,
		EstimatedDelivery: now.Add(domain.DeliveryLeadTimeHours * time.Hour),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeOrderCreated,
		Collection: "orders",
		EntityID:   strconv.Itoa(order.ID),
	})

	return order, nil
}
