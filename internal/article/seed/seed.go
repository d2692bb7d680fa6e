// Package seed installs the blog articles bundled with the application.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tair/storefront/internal/article/domain"
	"github.com/tair/storefront/internal/article/repository"
	"github.com/tair/storefront/internal/storage"
	"github.com/tair/storefront/pkg/logger"
)

//go:embed articles.json
var articlesJSON []byte

// Load parses the bundled seed articles.
func Load() ([]domain.Article, error) {
	var articles []domain.Article
	if err := json.Unmarshal(articlesJSON, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse bundled articles: %w", err)
	}
	now := time.Now()
	for i := range articles {
		articles[i].IsEditable = false
		articles[i].CreatedBy = domain.CreatedByOriginal
		if articles[i].CreatedAt.IsZero() {
			articles[i].CreatedAt = now
			articles[i].UpdatedAt = now
		}
	}
	return articles, nil
}

// EnsureSeedData appends bundled articles whose ids are missing from the
// persisted original-tagged records. Idempotent; user-created articles are
// never touched.
func EnsureSeedData(ctx context.Context, adapter *storage.Adapter) error {
	seeds, err := Load()
	if err != nil {
		return err
	}

	col := storage.NewCollection[domain.Article](adapter, repository.CollectionName)
	existing, err := col.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}

	originalIDs := make(map[int]bool)
	for _, a := range existing {
		if a.CreatedBy == domain.CreatedByOriginal {
			originalIDs[a.ID] = true
		}
	}

	added := 0
	for _, s := range seeds {
		if !originalIDs[s.ID] {
			existing = append(existing, s)
			added++
		}
	}
	if added == 0 {
		return nil
	}

	if res := col.Save(ctx, existing); !res.OK() {
		return fmt.Errorf("failed to persist seed articles: %w", res.Err)
	}

	logger.Info(ctx).
		Int("added", added).
		Int("total", len(existing)).
		Str("collection", repository.CollectionName).
		Msg("Seed articles installed")

	return nil
}
