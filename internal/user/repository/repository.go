package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tair/storefront/internal/storage"
	"github.com/tair/storefront/internal/user/domain"
)

// CollectionName is the storage key for the user collection.
const CollectionName = "users"

// CollectionUserRepository persists users as one collection blob. Email
// uniqueness is application-level: a case-insensitive scan before insert.
type CollectionUserRepository struct {
	col *storage.Collection[domain.User]
}

// NewCollectionUserRepository creates a user repository over an adapter.
func NewCollectionUserRepository(adapter *storage.Adapter) *CollectionUserRepository {
	return &CollectionUserRepository{
		col: storage.NewCollection[domain.User](adapter, CollectionName),
	}
}

func (r *CollectionUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CollectionUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CollectionUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.col.Load(ctx)
}

func (r *CollectionUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CollectionUserRepository) Create(ctx context.Context, user *domain.User) error {
	users, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	users = append(users, *user)
	if res := r.col.Save(ctx, users); !res.OK() {
		return fmt.Errorf("failed to persist users: %w", res.Err)
	}
	return nil
}

func (r *CollectionUserRepository) Update(ctx context.Context, user *domain.User) error {
	users, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			user.UpdatedAt = time.Now()
			users[i] = *user
			if res := r.col.Save(ctx, users); !res.OK() {
				return fmt.Errorf("failed to persist users: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionUserRepository) Delete(ctx context.Context, id string) error {
	users, err := r.col.Load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == id {
			users = append(users[:i], users[i+1:]...)
			if res := r.col.Save(ctx, users); !res.OK() {
				return fmt.Errorf("failed to persist users: %w", res.Err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CollectionUserRepository) Count(ctx context.Context) (int, error) {
	users, err := r.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (r *CollectionUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	users, err := r.col.Load(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}
