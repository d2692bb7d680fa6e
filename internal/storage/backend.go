package storage

import (
	"context"
	"errors"
)

// Backend is a named key-value storage backend. A collection is stored as a
// single opaque blob under its name; backends do not interpret the payload.
type Backend interface {
	// Save writes the blob for a collection, replacing any previous value.
	Save(ctx context.Context, collection string, data []byte) error
	// Load reads the blob for a collection. The boolean reports whether the
	// collection exists; a missing collection is not an error.
	Load(ctx context.Context, collection string) (data []byte, found bool, err error)
	// Name identifies the backend in write results and logs.
	Name() string
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// ErrQuotaExceeded is returned by a backend when a write would exceed its
// storage budget.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// WriteResult reports the outcome of an adapter write. Writes never fail
// silently: callers always learn which backend took the write, whether the
// primary was bypassed, and the terminal error if both backends refused.
type WriteResult struct {
	Backend  string `json:"backend"`
	FellBack bool   `json:"fell_back"`
	Err      error  `json:"-"`
}

// OK reports whether the write landed on some backend.
func (r WriteResult) OK() bool {
	return r.Err == nil
}
