// Package seed provisions the reserved admin account.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/auth"
	"github.com/tair/storefront/pkg/logger"
)

// EnsureAdmin creates the reserved admin account if no user with the
// configured email exists. Idempotent; an existing account is left untouched
// so a changed config password never silently rotates credentials.
func EnsureAdmin(ctx context.Context, repo domain.UserRepository, email, password string) error {
	exists, err := repo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    "Store",
		LastName:     "Admin",
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info(ctx).Str("email", email).Msg("Reserved admin account created")
	return nil
}
