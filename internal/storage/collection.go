package storage

import "context"

// Collection provides typed access to one persisted record collection.
// Reads load the whole collection; writes replace it. This mirrors the
// blob-per-collection storage model: there is no partial update and no index,
// repositories scan linearly.
type Collection[T any] struct {
	adapter *Adapter
	name    string
}

// NewCollection binds a typed collection to an adapter.
func NewCollection[T any](adapter *Adapter, name string) *Collection[T] {
	return &Collection[T]{adapter: adapter, name: name}
}

// Name returns the collection name used as the storage key.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns all records. A missing collection yields an empty slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	var records []T
	if err := c.adapter.Load(ctx, c.name, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, records []T) WriteResult {
	return c.adapter.Save(ctx, c.name, records)
}

// NextID assigns the next integer id: one past the maximum id among existing
// records. Not collision-safe across concurrent writers, matching the
// single-writer ownership model of the store.
func NextID[T any](records []T, id func(T) int) int {
	max := 0
	for _, r := range records {
		if v := id(r); v > max {
			max = v
		}
	}
	return max + 1
}
