package query

import (
	"context"

	"github.com/tair/storefront/internal/product/domain"
)

// ListProductsQuery lists products, optionally filtered by category or a
// search term, with offset pagination.
type ListProductsQuery struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListProductsResult is the paginated result of a product listing
type ListProductsResult struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListProductsHandler handles list products queries
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	var (
		products []domain.Product
		err      error
	)
	switch {
	case q.Search != "":
		products, err = h.repo.Search(ctx, q.Search)
	case q.Category != "":
		products, err = h.repo.FindByCategory(ctx, q.Category)
	default:
		products, err = h.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	total := len(products)
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &ListProductsResult{
		Products: products[offset:end],
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// ListCategoriesHandler lists the distinct product categories
type ListCategoriesHandler struct {
	repo domain.ProductRepository
}

// NewListCategoriesHandler creates a new list categories handler
func NewListCategoriesHandler(repo domain.ProductRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{repo: repo}
}

// Handle executes the list categories query
func (h *ListCategoriesHandler) Handle(ctx context.Context) ([]string, error) {
	return h.repo.Categories(ctx)
}
