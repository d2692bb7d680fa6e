package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/product/repository"
	"github.com/tair/storefront/internal/storage"
)

func newTestRepo(t *testing.T) (*repository.CollectionProductRepository, *events.Bus) {
	t.Helper()
	adapter := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	return repository.NewCollectionProductRepository(adapter), events.NewBus()
}

func seedProtected(t *testing.T, repo domain.ProductRepository) *domain.Product {
	t.Helper()
	// Built the way the seeder writes records: original provenance, not
	// editable.
	product := &domain.Product{
		Name:      "Seeded Honey",
		Price:     5.0,
		Category:  "Pantry",
		InStock:   true,
		CreatedBy: domain.CreatedByOriginal,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestCreateProductAssignsIDAndProvenance(t *testing.T) {
	repo, bus := newTestRepo(t)
	handler := NewCreateProductHandler(repo, bus)

	var published []events.Event
	bus.Subscribe(events.TypeProductCreated, func(_ context.Context, e events.Event) {
		published = append(published, e)
	})

	first, err := handler.Handle(context.Background(), CreateProductCommand{
		Name: "Tea", Price: 3.2, Category: "Beverages", InStock: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.ID)
	require.True(t, first.IsEditable)
	require.Equal(t, domain.CreatedByUser, first.CreatedBy)

	second, err := handler.Handle(context.Background(), CreateProductCommand{
		Name: "Juice", Price: 2.1, Category: "Beverages", InStock: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)

	require.Len(t, published, 2)
	require.Equal(t, "1", published[0].EntityID)
}

func TestCreateProductValidation(t *testing.T) {
	repo, bus := newTestRepo(t)
	handler := NewCreateProductHandler(repo, bus)

	_, err := handler.Handle(context.Background(), CreateProductCommand{Price: 1, Category: "x"})
	require.Error(t, err)

	_, err = handler.Handle(context.Background(), CreateProductCommand{Name: "a", Price: -1, Category: "x"})
	require.Error(t, err)

	_, err = handler.Handle(context.Background(), CreateProductCommand{Name: "a", Price: 1, Discount: 150, Category: "x"})
	require.Error(t, err)
}

func TestUpdateRefusesProtectedRecord(t *testing.T) {
	repo, bus := newTestRepo(t)
	protected := seedProtected(t, repo)

	name := "Renamed"
	_, err := NewUpdateProductHandler(repo, bus).Handle(context.Background(), UpdateProductCommand{
		ID:   protected.ID,
		Name: &name,
	})
	require.ErrorIs(t, err, domain.ErrProtectedRecord)

	// The record is untouched.
	reloaded, err := repo.FindByID(context.Background(), protected.ID)
	require.NoError(t, err)
	require.Equal(t, *protected, *reloaded)
}

func TestDeleteRefusesProtectedRecord(t *testing.T) {
	repo, bus := newTestRepo(t)
	protected := seedProtected(t, repo)

	err := NewDeleteProductHandler(repo, bus).Handle(context.Background(), DeleteProductCommand{ID: protected.ID})
	require.ErrorIs(t, err, domain.ErrProtectedRecord)

	_, err = repo.FindByID(context.Background(), protected.ID)
	require.NoError(t, err)
}

func TestUpdateAndDeleteUserRecord(t *testing.T) {
	repo, bus := newTestRepo(t)
	created, err := NewCreateProductHandler(repo, bus).Handle(context.Background(), CreateProductCommand{
		Name: "Crackers", Price: 2.5, Category: "Snacks", InStock: true,
	})
	require.NoError(t, err)

	price := 1.99
	updated, err := NewUpdateProductHandler(repo, bus).Handle(context.Background(), UpdateProductCommand{
		ID:    created.ID,
		Price: &price,
	})
	require.NoError(t, err)
	require.Equal(t, 1.99, updated.Price)

	require.NoError(t, NewDeleteProductHandler(repo, bus).Handle(context.Background(), DeleteProductCommand{ID: created.ID}))

	_, err = repo.FindByID(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
