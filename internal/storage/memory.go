package storage

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryBackend keeps collections in a concurrent map. It is the default
// fallback backend and the backend of choice in tests. An optional byte
// budget makes it refuse oversized writes the way a quota-bound backend
// would.
type MemoryBackend struct {
	data     *xsync.MapOf[string, []byte]
	maxBytes int
}

// NewMemoryBackend creates an unbounded in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: xsync.NewMapOf[string, []byte]()}
}

// NewBoundedMemoryBackend creates a backend that rejects any single write
// larger than maxBytes with ErrQuotaExceeded.
func NewBoundedMemoryBackend(maxBytes int) *MemoryBackend {
	return &MemoryBackend{data: xsync.NewMapOf[string, []byte](), maxBytes: maxBytes}
}

func (b *MemoryBackend) Save(_ context.Context, collection string, data []byte) error {
	if b.maxBytes > 0 && len(data) > b.maxBytes {
		return ErrQuotaExceeded
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.data.Store(collection, cp)
	return nil
}

func (b *MemoryBackend) Load(_ context.Context, collection string) ([]byte, bool, error) {
	data, ok := b.data.Load(collection)
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Ping(context.Context) error { return nil }
