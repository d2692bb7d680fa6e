package domain

import (
	"context"
	"errors"
	"time"
)

const (
	CreatedByOriginal = "original"
	CreatedByUser     = "user"
)

var (
	ErrNotFound        = errors.New("article not found")
	ErrProtectedRecord = errors.New("original articles cannot be modified or deleted")
)

// Article represents a blog post.
type Article struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Category   string    `json:"category"`
	Author     string    `json:"author"`
	Tags       []string  `json:"tags,omitempty"`
	Image      string    `json:"image,omitempty"`
	IsEditable bool      `json:"is_editable"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsProtected reports whether the record is seed data.
func (a *Article) IsProtected() bool {
	return !a.IsEditable || a.CreatedBy == CreatedByOriginal
}

// ArticleRepository defines the contract for article data access.
type ArticleRepository interface {
	FindByID(ctx context.Context, id int) (*Article, error)
	FindAll(ctx context.Context) ([]Article, error)
	FindByCategory(ctx context.Context, category string) ([]Article, error)
	Create(ctx context.Context, article *Article) error
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}
