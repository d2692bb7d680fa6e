package query

import (
	"context"

	"github.com/tair/storefront/internal/product/domain"
)

// ProductStats summarizes the catalog for the admin dashboard.
type ProductStats struct {
	TotalProducts int            `json:"total_products"`
	InStock       int            `json:"in_stock"`
	OutOfStock    int            `json:"out_of_stock"`
	Discounted    int            `json:"discounted"`
	UserCreated   int            `json:"user_created"`
	ByCategory    map[string]int `json:"by_category"`
	AverageRating float64        `json:"average_rating"`
}

// GetStatsHandler handles product statistics queries
type GetStatsHandler struct {
	repo domain.ProductRepository
}

// NewGetStatsHandler creates a new stats handler
func NewGetStatsHandler(repo domain.ProductRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the stats query
func (h *GetStatsHandler) Handle(ctx context.Context) (*ProductStats, error) {
	products, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ProductStats{
		TotalProducts: len(products),
		ByCategory:    make(map[string]int),
	}
	var ratingSum float64
	for _, p := range products {
		if p.InStock {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
		if p.Discount > 0 {
			stats.Discounted++
		}
		if p.CreatedBy == domain.CreatedByUser {
			stats.UserCreated++
		}
		stats.ByCategory[p.Category]++
		ratingSum += p.Rating
	}
	if len(products) > 0 {
		stats.AverageRating = ratingSum / float64(len(products))
	}

	return stats, nil
}
