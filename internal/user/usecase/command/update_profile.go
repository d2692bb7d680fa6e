package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/user/domain"
)

// MaxUserCollectionBytes caps the serialized size of the whole user
// collection. Avatar updates that would push the collection past the cap are
// refused before anything is written.
const MaxUserCollectionBytes = 4 << 20

// UpdateProfileCommand merges the provided fields into the user's record.
// Nil pointers mean "leave unchanged".
type UpdateProfileCommand struct {
	UserID    string
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
}

// UpdateProfileHandler handles profile updates
type UpdateProfileHandler struct {
	repo domain.UserRepository
	bus  *events.Bus
}

// NewUpdateProfileHandler creates a new update profile handler
func NewUpdateProfileHandler(repo domain.UserRepository, bus *events.Bus) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo, bus: bus}
}

// Handle executes the update profile command
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*domain.User, error) {
	user, err := h.repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		if strings.TrimSpace(*cmd.FirstName) == "" {
			return nil, fmt.Errorf("first name is required")
		}
		user.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		user.LastName = *cmd.LastName
	}
	if cmd.Phone != nil {
		user.Phone = *cmd.Phone
	}
	if cmd.Avatar != nil {
		if err := h.checkAvatarBudget(ctx, user, *cmd.Avatar); err != nil {
			return nil, err
		}
		user.Avatar = *cmd.Avatar
	}

	if err := h.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	h.bus.Publish(ctx, events.Event{
		Type:       events.TypeUserUpdated,
		Collection: "users",
		EntityID:   user.ID,
	})

	return user, nil
}

// checkAvatarBudget estimates the serialized size of the user collection with
// the new avatar applied and refuses the update if it exceeds the cap.
func (h *UpdateProfileHandler) checkAvatarBudget(ctx context.Context, user *domain.User, avatar string) error {
	users, err := h.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i].Avatar = avatar
		}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to estimate collection size: %w", err)
	}
	if len(data) > MaxUserCollectionBytes {
		return domain.ErrAvatarTooLarge
	}
	return nil
}
