package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend stores one JSON file per collection under a data directory.
// It is the durable fallback for deployments without Postgres or Redis.
// Writes go through a temp file and rename so a crash never leaves a
// half-written collection.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(collection string) string {
	// Collection names are fixed identifiers, but sanitize anyway.
	name := strings.ReplaceAll(collection, string(os.PathSeparator), "_")
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Save(_ context.Context, collection string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tmp := b.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file save %s: %w", collection, err)
	}
	if err := os.Rename(tmp, b.path(collection)); err != nil {
		return fmt.Errorf("file save %s: %w", collection, err)
	}
	return nil
}

func (b *FileBackend) Load(_ context.Context, collection string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path(collection))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("file load %s: %w", collection, err)
	}
	return data, true, nil
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Ping(context.Context) error {
	_, err := os.Stat(b.dir)
	return err
}
