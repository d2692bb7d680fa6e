package query

import (
	"context"

	"github.com/tair/storefront/internal/order/domain"
)

// GetOrderQuery represents the query to get an order by ID
type GetOrderQuery struct {
	ID int
}

// GetOrderHandler handles get order queries
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (*domain.Order, error) {
	return h.repo.FindByID(ctx, q.ID)
}

// ListUserOrdersQuery lists the orders of one user
type ListUserOrdersQuery struct {
	UserID string
}

// ListOrdersHandler handles order listing queries
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// HandleAll returns every persisted order (admin).
func (h *ListOrdersHandler) HandleAll(ctx context.Context) ([]domain.Order, error) {
	return h.repo.FindAll(ctx)
}

// HandleUser returns the orders belonging to one user.
func (h *ListOrdersHandler) HandleUser(ctx context.Context, q ListUserOrdersQuery) ([]domain.Order, error) {
	return h.repo.FindByUser(ctx, q.UserID)
}

// OrderStats summarizes orders for the admin dashboard.
type OrderStats struct {
	TotalOrders int            `json:"total_orders"`
	Revenue     float64        `json:"revenue"`
	ByStatus    map[string]int `json:"by_status"`
}

// GetStatsHandler handles order statistics queries
type GetStatsHandler struct {
	repo domain.OrderRepository
}

// NewGetStatsHandler creates a new stats handler
func NewGetStatsHandler(repo domain.OrderRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the stats query. Cancelled orders do not count toward
// revenue.
func (h *GetStatsHandler) Handle(ctx context.Context) (*OrderStats, error) {
	orders, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &OrderStats{
		TotalOrders: len(orders),
		ByStatus:    make(map[string]int),
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status != domain.StatusCancelled {
			stats.Revenue += o.Total
		}
	}
	return stats, nil
}
