package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/order/domain"
	"github.com/tair/storefront/internal/order/repository"
	"github.com/tair/storefront/internal/storage"
	userdomain "github.com/tair/storefront/internal/user/domain"
	userrepo "github.com/tair/storefront/internal/user/repository"
)

func newFixture(t *testing.T) (*CreateOrderHandler, domain.OrderRepository, *userdomain.User) {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	orders := repository.NewCollectionOrderRepository(adapter)
	users := userrepo.NewCollectionUserRepository(adapter)

	user := &userdomain.User{
		ID:        "u1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+1-555-0100",
		Role:      userdomain.RoleUser,
	}
	require.NoError(t, users.Create(context.Background(), user))

	return NewCreateOrderHandler(orders, users, events.NewBus()), orders, user
}

func orderItems() []domain.OrderItem {
	return []domain.OrderItem{
		{ProductID: 1, Name: "Apples", Price: 4.5, Quantity: 2, Unit: "kg"},
		{ProductID: 2, Name: "Honey", Price: 12.0, Discount: 25, Quantity: 1},
	}
}

func shipping() domain.ShippingInfo {
	return domain.ShippingInfo{Address: "1 Main St", City: "Springfield", ZIP: "12345", Country: "US"}
}

func TestCreateOrderDenormalizesCustomer(t *testing.T) {
	h, _, user := newFixture(t)

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:        user.ID,
		Items:         orderItems(),
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	require.Equal(t, "Ada Lovelace", order.CustomerName)
	require.Equal(t, user.Email, order.CustomerEmail)
	require.Equal(t, user.Phone, order.CustomerPhone)
	require.Equal(t, domain.StatusProcessing, order.Status)

	lead := order.EstimatedDelivery.Sub(order.CreatedAt)
	require.Equal(t, domain.DeliveryLeadTimeHours*time.Hour, lead)
}

func TestCreateOrderAssignsSequentialIDs(t *testing.T) {
	h, _, user := newFixture(t)
	ctx := context.Background()

	cmd := CreateOrderCommand{
		UserID:        user.ID,
		Items:         orderItems(),
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	}

	var last int
	for i := 0; i < 3; i++ {
		order, err := h.Handle(ctx, cmd)
		require.NoError(t, err)
		require.Greater(t, order.ID, last)
		last = order.ID
	}
}

func TestCreateOrderRecomputesTotals(t *testing.T) {
	h, _, user := newFixture(t)

	// 2*4.50 + 12.00*0.75 = 18.00, below the free-shipping threshold.
	order, err := h.Handle(context.Background(), CreateOrderCommand{
		UserID:        user.ID,
		Items:         orderItems(),
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	require.InDelta(t, 18.00, order.Subtotal, 1e-9)
	require.InDelta(t, domain.ShippingFee, order.Shipping, 1e-9)
	require.InDelta(t, 1.44, order.Tax, 1e-9)
	require.InDelta(t, 3.00, order.Discount, 1e-9)
	require.InDelta(t, 18.00+domain.ShippingFee+1.44, order.Total, 1e-9)
}

func TestShippingFreeAboveThreshold(t *testing.T) {
	below := domain.CalculateTotals([]domain.OrderItem{
		{ProductID: 1, Name: "A", Price: 40, Quantity: 1},
	})
	require.InDelta(t, domain.ShippingFee, below.Shipping, 1e-9)

	atThreshold := domain.CalculateTotals([]domain.OrderItem{
		{ProductID: 1, Name: "A", Price: 50, Quantity: 1},
	})
	require.Zero(t, atThreshold.Shipping)

	// A discount can pull a cart back under the threshold.
	discounted := domain.CalculateTotals([]domain.OrderItem{
		{ProductID: 1, Name: "A", Price: 55, Discount: 20, Quantity: 1},
	})
	require.InDelta(t, domain.ShippingFee, discounted.Shipping, 1e-9)
}

func TestCreateOrderValidation(t *testing.T) {
	h, _, user := newFixture(t)
	ctx := context.Background()

	_, err := h.Handle(ctx, CreateOrderCommand{
		UserID:        user.ID,
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = h.Handle(ctx, CreateOrderCommand{
		UserID:        user.ID,
		Items:         []domain.OrderItem{{ProductID: 1, Name: "A", Price: 1, Quantity: 0}},
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.Error(t, err)

	_, err = h.Handle(ctx, CreateOrderCommand{
		UserID:        "missing",
		Items:         orderItems(),
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.Error(t, err)
}

func TestUpdateStatus(t *testing.T) {
	h, orders, user := newFixture(t)
	ctx := context.Background()

	bus := events.NewBus()
	var published []events.Event
	bus.Subscribe(events.TypeOrderUpdated, func(_ context.Context, e events.Event) {
		published = append(published, e)
	})
	statusHandler := NewUpdateStatusHandler(orders, bus)

	order, err := h.Handle(ctx, CreateOrderCommand{
		UserID:        user.ID,
		Items:         orderItems(),
		ShippingInfo:  shipping(),
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	updated, err := statusHandler.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusShipped})
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, updated.Status)
	require.Len(t, published, 1)

	// Any known status may overwrite any other.
	updated, err = statusHandler.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: domain.StatusProcessing})
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, updated.Status)

	_, err = statusHandler.Handle(ctx, UpdateStatusCommand{OrderID: order.ID, Status: "misplaced"})
	require.ErrorIs(t, err, domain.ErrUnknownStatus)

	_, err = statusHandler.Handle(ctx, UpdateStatusCommand{OrderID: 9999, Status: domain.StatusShipped})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
