package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/storage"
)

// CollectionName is the storage key for the product collection.
const CollectionName = "products"

// CollectionProductRepository persists products as one collection blob.
// Every write is read-modify-write over the whole collection.
type CollectionProductRepository struct {
	col *storage.Collection[domain.Product]
}

// NewCollectionProductRepository creates a product repository over an adapter.
func NewCollectionProductRepository(adapter *storage.Adapter) *CollectionProductRepository {
	return &CollectionProductRepository{
		col: storage.NewCollection[domain.Product](adapter, CollectionName),
	}
}

func (r *CollectionProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	products, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CollectionProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.col.Load(ctx)
}

func (r *CollectionProductRepository) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *CollectionProductRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	products, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	matched := make([]domain.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *CollectionProductRepository) Categories(ctx context.Context) ([]string, error) {
	products, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range products {
		key := strings.ToLower(p.Category)
		if p.Category != "" && !seen[key] {
			seen[key] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Create assigns the next integer id and appends the product.
func (r *CollectionProductRepository) Create(ctx context.Context, product *domain.Product) error {
	products, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	product.ID = storage.NextID(products, func(p domain.Product) int { return p.ID })
	products = append(products, *product)
	if res := r.col.Save(ctx, products); !res.OK() {
		return fmt.Errorf("failed to persist products: %w", res.Err)
	}
	return nil
}

func (r *CollectionProductRepository) Update(ctx context.Context, product *domain.Product) error {
	products, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == product.ID {
			product.UpdatedAt = time.Now()
			products[i] = *product
			if res := r.col.Save(ctx, products); !res.OK() {
				return fmt.Errorf("failed to persist products: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionProductRepository) Delete(ctx context.Context, id int) error {
	products, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			if res := r.col.Save(ctx, products); !res.OK() {
				return fmt.Errorf("failed to persist products: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionProductRepository) Count(ctx context.Context) (int, error) {
	products, err := r.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}
