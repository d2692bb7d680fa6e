package query

import (
	"context"

	"github.com/tair/storefront/internal/article/domain"
)

// GetArticleQuery represents the query to get an article by ID
type GetArticleQuery struct {
	ID int
}

// GetArticleHandler handles get article queries
type GetArticleHandler struct {
	repo domain.ArticleRepository
}

func NewGetArticleHandler(repo domain.ArticleRepository) *GetArticleHandler {
	return &GetArticleHandler{repo: repo}
}

func (h *GetArticleHandler) Handle(ctx context.Context, q GetArticleQuery) (*domain.Article, error) {
	return h.repo.FindByID(ctx, q.ID)
}

// ListArticlesQuery lists articles, optionally filtered by category.
type ListArticlesQuery struct {
	Category string
	Limit    int
	Offset   int
}

// ListArticlesResult is the paginated result of an article listing
type ListArticlesResult struct {
	Articles []domain.Article `json:"articles"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListArticlesHandler handles list article queries
type ListArticlesHandler struct {
	repo domain.ArticleRepository
}

func NewListArticlesHandler(repo domain.ArticleRepository) *ListArticlesHandler {
	return &ListArticlesHandler{repo: repo}
}

func (h *ListArticlesHandler) Handle(ctx context.Context, q ListArticlesQuery) (*ListArticlesResult, error) {
	var (
		articles []domain.Article
		err      error
	)
	if q.Category != "" {
		articles, err = h.repo.FindByCategory(ctx, q.Category)
	} else {
		articles, err = h.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	total := len(articles)
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

	return &ListArticlesResult{
		Articles: articles[offset:end],
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}
