package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/storefront/internal/order/domain"
	"github.com/tair/storefront/internal/storage"
)

// CollectionName is the storage key for the order collection.
const CollectionName = "orders"

// CollectionOrderRepository persists orders as one collection blob.
type CollectionOrderRepository struct {
	col *storage.Collection[domain.Order]
}

// NewCollectionOrderRepository creates an order repository over an adapter.
func NewCollectionOrderRepository(adapter *storage.Adapter) *CollectionOrderRepository {
	return &CollectionOrderRepository{
		col: storage.NewCollection[domain.Order](adapter, CollectionName),
	}
}

func (r *CollectionOrderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	orders, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CollectionOrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Order, 0)
	for _, o := range orders {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (r *CollectionOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.col.Load(ctx)
}

// Create assigns the next order id (strictly greater than every persisted id)
// and appends the order.
func (r *CollectionOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	orders, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	order.ID = storage.NextID(orders, func(o domain.Order) int { return o.ID })
	orders = append(orders, *order)
	if res := r.col.Save(ctx, orders); !res.OK() {
		return fmt.Errorf("failed to persist orders: %w", res.Err)
	}
	return nil
}

func (r *CollectionOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	orders, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == order.ID {
			order.UpdatedAt = time.Now()
			orders[i] = *order
			if res := r.col.Save(ctx, orders); !res.OK() {
				return fmt.Errorf("failed to persist orders: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionOrderRepository) Count(ctx context.Context) (int, error) {
	orders, err := r.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}
