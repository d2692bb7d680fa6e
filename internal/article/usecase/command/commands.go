package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tair/storefront/internal/article/domain"
	"github.com/tair/storefront/internal/events"
)

// CreateArticleCommand represents the command to publish a new article
type CreateArticleCommand struct {
	Title    string
	Content  string
	Excerpt  string
	Category string
	Author   string
	Tags     []string
	Image    string
}

// CreateArticleHandler handles article creation
type CreateArticleHandler struct {
	repo domain.ArticleRepository
	bus  *events.Bus
}

func NewCreateArticleHandler(repo domain.ArticleRepository, bus *events.Bus) *CreateArticleHandler {
	return &CreateArticleHandler{repo: repo, bus: bus}
}

func (h *CreateArticleHandler) Handle(ctx context.Context, cmd CreateArticleCommand) (*domain.Article, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if cmd.Content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if cmd.Author == "" {
		return nil, fmt.Errorf("author is required")
	}

	now := time.Now()
	article := &domain.Article{
		Title:      cmd.Title,
		Content:    cmd.Content,
		Excerpt:    cmd.Excerpt,
		Category:   cmd.Category,
		Author:     cmd.Author,
		Tags:       cmd.Tags,
		Image:      cmd.Image,
		IsEditable: true,
		CreatedBy:  domain.CreatedByUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeArticleCreated,
		Collection: "articles",
		EntityID:   strconv.Itoa(article.ID),
	})

	return article, nil
}

// UpdateArticleCommand merges provided fields into an existing article.
type UpdateArticleCommand struct {
	ID       int
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string
	Tags     []string
	Image    *string
}

// UpdateArticleHandler handles article updates
type UpdateArticleHandler struct {
	repo domain.ArticleRepository
	bus  *events.Bus
}

func NewUpdateArticleHandler(repo domain.ArticleRepository, bus *events.Bus) *UpdateArticleHandler {
	return &UpdateArticleHandler{repo: repo, bus: bus}
}

func (h *UpdateArticleHandler) Handle(ctx context.Context, cmd UpdateArticleCommand) (*domain.Article, error) {
	article, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if article.IsProtected() {
		return nil, domain.ErrProtectedRecord
	}

	if cmd.Title != nil {
		if *cmd.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		article.Title = *cmd.Title
	}
	if cmd.Content != nil {
		article.Content = *cmd.Content
	}
	if cmd.Excerpt != nil {
		article.Excerpt = *cmd.Excerpt
	}
	if cmd.Category != nil {
		article.Category = *cmd.Category
	}
	if cmd.Tags != nil {
		article.Tags = cmd.Tags
	}
	if cmd.Image != nil {
		article.Image = *cmd.Image
	}

	if err := h.repo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeArticleUpdated,
		Collection: "articles",
		EntityID:   strconv.Itoa(article.ID),
	})

	return article, nil
}

// DeleteArticleCommand represents the command to delete an article
type DeleteArticleCommand struct {
	ID int
}

// DeleteArticleHandler handles article deletion
type DeleteArticleHandler struct {
	repo domain.ArticleRepository
	bus  *events.Bus
}

func NewDeleteArticleHandler(repo domain.ArticleRepository, bus *events.Bus) *DeleteArticleHandler {
	return &DeleteArticleHandler{repo: repo, bus: bus}
}

func (h *DeleteArticleHandler) Handle(ctx context.Context, cmd DeleteArticleCommand) error {
	article, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if article.IsProtected() {
		return domain.ErrProtectedRecord
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeArticleDeleted,
		Collection: "articles",
		EntityID:   strconv.Itoa(cmd.ID),
	})

	return nil
}
