package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/product/domain"
	"github.com/tair/storefront/internal/product/repository"
	"github.com/tair/storefront/internal/storage"
)

func TestEnsureSeedDataIsIdempotent(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	ctx := context.Background()

	seeds, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, seeds)

	for i := 0; i < 5; i++ {
		require.NoError(t, EnsureSeedData(ctx, adapter))
	}

	repo := repository.NewCollectionProductRepository(adapter)
	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(seeds))

	seen := make(map[int]int)
	for _, p := range products {
		require.Equal(t, domain.CreatedByOriginal, p.CreatedBy)
		require.False(t, p.IsEditable)
		seen[p.ID]++
	}
	for _, s := range seeds {
		require.Equal(t, 1, seen[s.ID], "seed id %d must appear exactly once", s.ID)
	}
}

func TestEnsureSeedDataFillsMissingSeeds(t *testing.T) {
	adapter := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	ctx := context.Background()

	require.NoError(t, EnsureSeedData(ctx, adapter))

	// Simulate a user-created product and a removed seed record.
	col := storage.NewCollection[domain.Product](adapter, repository.CollectionName)
	products, err := col.Load(ctx)
	require.NoError(t, err)

	removedID := products[0].ID
	products = products[1:]
	custom := domain.Product{
		ID:         999,
		Name:       "Custom Jam",
		Price:      4.5,
		Category:   "Pantry",
		IsEditable: true,
		CreatedBy:  domain.CreatedByUser,
	}
	products = append(products, custom)
	require.NoError(t, col.Save(ctx, products).Err)

	require.NoError(t, EnsureSeedData(ctx, adapter))

	reloaded, err := col.Load(ctx)
	require.NoError(t, err)

	var foundRemoved, foundCustom bool
	for _, p := range reloaded {
		if p.ID == removedID && p.CreatedBy == domain.CreatedByOriginal {
			foundRemoved = true
		}
		if p.ID == custom.ID {
			foundCustom = true
			require.Equal(t, domain.CreatedByUser, p.CreatedBy)
		}
	}
	require.True(t, foundRemoved, "missing seed record must be re-added")
	require.True(t, foundCustom, "user record must survive reseeding")
}
