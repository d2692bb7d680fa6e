package command

import (
	"context"
	"fmt"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/user/domain"
)

// ChangeRoleCommand represents the command to change a user's role
type ChangeRoleCommand struct {
	UserID string
	Role   string
}

// ChangeRoleHandler handles role changes
type ChangeRoleHandler struct {
	repo domain.UserRepository
	bus  *events.Bus
}

// NewChangeRoleHandler creates a new change role handler
func NewChangeRoleHandler(repo domain.UserRepository, bus *events.Bus) *ChangeRoleHandler {
	return &ChangeRoleHandler{repo: repo, bus: bus}
}

// Handle executes the change role command
func (h *ChangeRoleHandler) Handle(ctx context.Context, cmd ChangeRoleCommand) (*domain.User, error) {
	if cmd.Role != domain.RoleUser && cmd.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", cmd.Role)
	}

	user, err := h.repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	user.Role = cmd.Role
	if err := h.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeUserUpdated,
		Collection: "users",
		EntityID:   user.ID,
	})

	return user, nil
}

// DeleteUserCommand represents the command to delete an account
type DeleteUserCommand struct {
	UserID string
}

// DeleteUserHandler handles account deletion
type DeleteUserHandler struct {
	repo domain.UserRepository
	bus  *events.Bus
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(repo domain.UserRepository, bus *events.Bus) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo, bus: bus}
}

// Handle executes the delete user command
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if err := h.repo.Delete(ctx, cmd.UserID); err != nil {
		return err
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeUserDeleted,
		Collection: "users",
		EntityID:   cmd.UserID,
	})

	return nil
}
