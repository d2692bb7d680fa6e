package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tair/storefront/internal/article/domain"
	"github.com/tair/storefront/internal/storage"
)

// CollectionName is the storage key for the article collection.
const CollectionName = "articles"

// CollectionArticleRepository persists articles as one collection blob.
type CollectionArticleRepository struct {
	col *storage.Collection[domain.Article]
}

// NewCollectionArticleRepository creates an article repository over an adapter.
func NewCollectionArticleRepository(adapter *storage.Adapter) *CollectionArticleRepository {
	return &CollectionArticleRepository{
		col: storage.NewCollection[domain.Article](adapter, CollectionName),
	}
}

func (r *CollectionArticleRepository) FindByID(ctx context.Context, id int) (*domain.Article, error) {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].ID == id {
			return &articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CollectionArticleRepository) FindAll(ctx context.Context) ([]domain.Article, error) {
	return r.col.Load(ctx)
}

func (r *CollectionArticleRepository) FindByCategory(ctx context.Context, category string) ([]domain.Article, error) {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Article, 0)
	for _, a := range articles {
		if strings.EqualFold(a.Category, category) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (r *CollectionArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	article.ID = storage.NextID(articles, func(a domain.Article) int { return a.ID })
	articles = append(articles, *article)
	if res := r.col.Save(ctx, articles); !res.OK() {
		return fmt.Errorf("failed to persist articles: %w", res.Err)
	}
	return nil
}

func (r *CollectionArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range articles {
		if articles[i].ID == article.ID {
			article.UpdatedAt = time.Now()
			articles[i] = *article
			if res := r.col.Save(ctx, articles); !res.OK() {
				return fmt.Errorf("failed to persist articles: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionArticleRepository) Delete(ctx context.Context, id int) error {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range articles {
		if articles[i].ID == id {
			articles = append(articles[:i], articles[i+1:]...)
			if res := r.col.Save(ctx, articles); !res.OK() {
				return fmt.Errorf("failed to persist articles: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionArticleRepository) Count(ctx context.Context) (int, error) {
	articles, err := r.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}
