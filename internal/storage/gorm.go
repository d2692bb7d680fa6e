package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CollectionRow is the relational shape of a persisted collection: one row
// per collection, the envelope as an opaque blob.
type CollectionRow struct {
	Name      string    `gorm:"primaryKey"`
	Data      []byte    `gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (CollectionRow) TableName() string {
	return "collections"
}

// GormBackend persists collections in a single Postgres table through GORM.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend wraps a GORM connection.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// AutoMigrate creates the collections table.
func (b *GormBackend) AutoMigrate() error {
	return b.db.AutoMigrate(&CollectionRow{})
}

func (b *GormBackend) Save(ctx context.Context, collection string, data []byte) error {
	row := CollectionRow{Name: collection, Data: data, UpdatedAt: time.Now()}
	err := b.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("gorm save %s: %w", collection, err)
	}
	return nil
}

func (b *GormBackend) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	var row CollectionRow
	err := b.db.WithContext(ctx).First(&row, "name = ?", collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("gorm load %s: %w", collection, err)
	}
	return row.Data, true, nil
}

func (b *GormBackend) Name() string { return "postgres-gorm" }

func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
