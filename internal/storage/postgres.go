package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresBackend is the raw database/sql twin of GormBackend, for
// deployments that want plain SQL over lib/pq.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an open *sql.DB.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Migrate creates the collections table if it does not exist.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Save(ctx context.Context, collection string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, data)
	if err != nil {
		return fmt.Errorf("postgres save %s: %w", collection, err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE name = $1`, collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres load %s: %w", collection, err)
	}
	return data, true, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}
