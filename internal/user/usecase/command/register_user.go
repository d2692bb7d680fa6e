package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/pkg/auth"
)

// RegisterUserCommand represents the command to register a new account
type RegisterUserCommand struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      string // Optional, defaults to "user"
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo       domain.UserRepository
	adminEmail string
	bus        *events.Bus
}

// NewRegisterUserHandler creates a new register user handler. adminEmail is
// the reserved privileged account; registrations using it always fail.
func NewRegisterUserHandler(repo domain.UserRepository, adminEmail string, bus *events.Bus) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, adminEmail: adminEmail, bus: bus}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	if cmd.FirstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if cmd.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if len(cmd.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	// The reserved admin email is never available for registration.
	if strings.EqualFold(cmd.Email, h.adminEmail) {
		return nil, domain.ErrEmailTaken
	}

	exists, err := h.repo.EmailExists(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := cmd.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("invalid role")
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		Role:         role,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeUserCreated,
		Collection: "users",
		EntityID:   user.ID,
	})

	return user, nil
}
