package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/events"
	"github.com/tair/storefront/internal/storage"
	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/internal/user/repository"
)

const adminEmail = "admin@storefront.dev"

func newRepo() domain.UserRepository {
	return repository.NewCollectionUserRepository(storage.NewAdapter(storage.NewMemoryBackend(), nil))
}

func register(t *testing.T, h *RegisterUserHandler, email string) *domain.User {
	t.Helper()
	user, err := h.Handle(context.Background(), RegisterUserCommand{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "s3cretpw",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAssignsIDAndDefaults(t *testing.T) {
	h := NewRegisterUserHandler(newRepo(), adminEmail, events.NewBus())

	user := register(t, h, "ada@example.com")
	require.NotEmpty(t, user.ID)
	require.Equal(t, domain.RoleUser, user.Role)
	require.NotEmpty(t, user.PasswordHash)
	require.NotEqual(t, "s3cretpw", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	h := NewRegisterUserHandler(newRepo(), adminEmail, events.NewBus())
	ctx := context.Background()

	_, err := h.Handle(ctx, RegisterUserCommand{Email: "a@b.c", Password: "s3cretpw"})
	require.Error(t, err, "first name is required")

	_, err = h.Handle(ctx, RegisterUserCommand{FirstName: "A", Email: "a@b.c", Password: "short"})
	require.Error(t, err, "password must have at least 6 characters")
}

func TestRegisterRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	h := NewRegisterUserHandler(newRepo(), adminEmail, events.NewBus())
	ctx := context.Background()

	register(t, h, "ada@example.com")

	_, err := h.Handle(ctx, RegisterUserCommand{
		FirstName: "Other",
		Email:     "ADA@Example.COM",
		Password:  "s3cretpw",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterRefusesReservedAdminEmail(t *testing.T) {
	h := NewRegisterUserHandler(newRepo(), adminEmail, events.NewBus())
	ctx := context.Background()

	for _, email := range []string{adminEmail, "Admin@Storefront.DEV"} {
		_, err := h.Handle(ctx, RegisterUserCommand{
			FirstName: "Mallory",
			Email:     email,
			Password:  "s3cretpw",
		})
		require.ErrorIs(t, err, domain.ErrEmailTaken, "email %q must be reserved", email)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	repo := newRepo()
	reg := NewRegisterUserHandler(repo, adminEmail, events.NewBus())
	login := NewLoginUserHandler(repo)
	ctx := context.Background()

	register(t, reg, "ada@example.com")

	resp, err := login.Handle(ctx, LoginUserCommand{Email: "Ada@Example.com", Password: "s3cretpw"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "ada@example.com", resp.User.Email)

	_, err = login.Handle(ctx, LoginUserCommand{Email: "ada@example.com", Password: "wrong-pw"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = login.Handle(ctx, LoginUserCommand{Email: "nobody@example.com", Password: "s3cretpw"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	repo := newRepo()
	reg := NewRegisterUserHandler(repo, adminEmail, events.NewBus())
	update := NewUpdateProfileHandler(repo, events.NewBus())
	ctx := context.Background()

	user := register(t, reg, "ada@example.com")

	phone := "+1-555-0100"
	updated, err := update.Handle(ctx, UpdateProfileCommand{UserID: user.ID, Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, updated.Phone)
	require.Equal(t, "Ada", updated.FirstName, "unset fields stay unchanged")
}

func TestUpdateProfileRejectsOversizedAvatar(t *testing.T) {
	repo := newRepo()
	reg := NewRegisterUserHandler(repo, adminEmail, events.NewBus())
	update := NewUpdateProfileHandler(repo, events.NewBus())
	ctx := context.Background()

	user := register(t, reg, "ada@example.com")

	avatar := "data:image/png;base64," + strings.Repeat("A", MaxUserCollectionBytes)
	_, err := update.Handle(ctx, UpdateProfileCommand{UserID: user.ID, Avatar: &avatar})
	require.ErrorIs(t, err, domain.ErrAvatarTooLarge)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Avatar, "a refused update must not be written")
}

func TestChangeRoleAndDelete(t *testing.T) {
	repo := newRepo()
	reg := NewRegisterUserHandler(repo, adminEmail, events.NewBus())
	bus := events.NewBus()
	ctx := context.Background()

	var published []events.Event
	bus.Subscribe(events.TypeUserUpdated, func(_ context.Context, e events.Event) {
		published = append(published, e)
	})
	bus.Subscribe(events.TypeUserDeleted, func(_ context.Context, e events.Event) {
		published = append(published, e)
	})

	user := register(t, reg, "ada@example.com")

	changed, err := NewChangeRoleHandler(repo, bus).Handle(ctx, ChangeRoleCommand{UserID: user.ID, Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.True(t, changed.IsAdmin())

	_, err = NewChangeRoleHandler(repo, bus).Handle(ctx, ChangeRoleCommand{UserID: user.ID, Role: "superuser"})
	require.Error(t, err)

	require.NoError(t, NewDeleteUserHandler(repo, bus).Handle(ctx, DeleteUserCommand{UserID: user.ID}))
	_, err = repo.FindByID(ctx, user.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, published, 2)
	require.Equal(t, events.TypeUserDeleted, published[1].Type)
}
