// Package seed installs the catalog records bundled with the application.
// Seed records are tagged as original and protected from user edits.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/product/repository"
	"github.com/tair/storefront/internal/storage"
	"github.com/tair/storefront/pkg/logger"
)

//go:embed products.json
var productsJSON []byte

// Load parses the bundled seed products.
func Load() ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("failed to parse bundled products: %w", err)
	}
	now := time.Now()
	for i := range products {
		products[i].IsEditable = false
		products[i].CreatedBy = domain.CreatedByOriginal
		if products[i].CreatedAt.IsZero() {
			products[i].CreatedAt = now
			products[i].UpdatedAt = now
		}
	}
	return products, nil
}

// EnsureSeedData makes the persisted collection contain every bundled seed
// record exactly once without touching user-created records. On first run the
// whole seed set is written; on later runs only seed ids missing from the
// persisted original-tagged records are appended, so a code update can ship
// new seed records without clobbering user edits. Idempotent.
func EnsureSeedData(ctx context.Context, adapter *storage.Adapter) error {
	seeds, err := Load()
	if err != nil {
		return err
	}

	col := storage.NewCollection[domain.Product](adapter, repository.CollectionName)
	existing, err := col.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	originalIDs := make(map[int]bool)
	for _, p := range existing {
		if p.CreatedBy == domain.CreatedByOriginal {
			originalIDs[p.ID] = true
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
		return fmt.Errorf("failed to persist seed products: %w", res.Err)
	}

	logger.Info(ctx).
		Int("added", added).
		Int("total", len(existing)).
		Str("collection", repository.CollectionName).
		Msg("Seed products installed")

	return nil
}
