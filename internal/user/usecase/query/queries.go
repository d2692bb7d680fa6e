package query

import (
	"context"

	"github.com/tair/storefront/internal/user/domain"
)

// GetUserQuery represents the query to get a user by ID
type GetUserQuery struct {
	ID string
}

// GetUserHandler handles get user queries
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (*domain.User, error) {
	return h.repo.FindByID(ctx, q.ID)
}

// CheckEmailQuery represents the query to check email availability
type CheckEmailQuery struct {
	Email string
}

// CheckEmailHandler handles email existence queries
type CheckEmailHandler struct {
	repo domain.UserRepository
}

// NewCheckEmailHandler creates a new check email handler
func NewCheckEmailHandler(repo domain.UserRepository) *CheckEmailHandler {
	return &CheckEmailHandler{repo: repo}
}

// Handle reports whether the email is already registered (case-insensitive).
func (h *CheckEmailHandler) Handle(ctx context.Context, q CheckEmailQuery) (bool, error) {
	return h.repo.EmailExists(ctx, q.Email)
}

// ListUsersHandler handles list users queries (admin)
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle returns the HTTP-safe projection of every account.
func (h *ListUsersHandler) Handle(ctx context.Context) ([]domain.Public, error) {
	users, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]domain.Public, 0, len(users))
	for i := range users {
		public = append(public, users[i].ToPublic())
	}
	return public, nil
}

// UserStats summarizes accounts for the admin dashboard.
type UserStats struct {
	TotalUsers int `json:"total_users"`
	Admins     int `json:"admins"`
	Customers  int `json:"customers"`
}

// GetStatsHandler handles user statistics queries
type GetStatsHandler struct {
	repo domain.UserRepository
}

// NewGetStatsHandler creates a new stats handler
func NewGetStatsHandler(repo domain.UserRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the stats query
func (h *GetStatsHandler) Handle(ctx context.Context) (*UserStats, error) {
	total, err := h.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := h.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		TotalUsers: total,
		Admins:     admins,
		Customers:  total - admins,
	}, nil
}
