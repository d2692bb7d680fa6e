package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/storefront/internal/delivery/httpx"
	"github.com/tair/storefront/internal/session"
	"github.com/tair/storefront/internal/user/domain"
	"github.com/tair/storefront/internal/user/usecase/command"
	"github.com/tair/storefront/internal/user/usecase/query"
	"github.com/tair/storefront/pkg/auth"
	"github.com/tair/storefront/pkg/logger"
)

// SessionHeader carries the client's anonymous session id. On login the
// session state browsed under this id is carried over to the account.
const SessionHeader = "X-Session-ID"

// UserHandler handles HTTP requests for accounts using CQRS pattern
type UserHandler struct {
	// Command handlers
	registerHandler   *command.RegisterUserHandler
	loginHandler      *command.LoginUserHandler
	updateHandler     *command.UpdateProfileHandler
	changeRoleHandler *command.ChangeRoleHandler
	deleteHandler     *command.DeleteUserHandler

	// Query handlers
	getHandler        *query.GetUserHandler
	checkEmailHandler *query.CheckEmailHandler
	listHandler       *query.ListUsersHandler
	statsHandler      *query.GetStatsHandler

	sessions   *session.Store
	metrics    *httpx.Metrics
	totalUsers prometheus.Gauge
}

// NewUserHandler wires the command and query handlers for the account routes.
func NewUserHandler(
	registerHandler *command.RegisterUserHandler,
	loginHandler *command.LoginUserHandler,
	updateHandler *command.UpdateProfileHandler,
	changeRoleHandler *command.ChangeRoleHandler,
	deleteHandler *command.DeleteUserHandler,
	getHandler *query.GetUserHandler,
	checkEmailHandler *query.CheckEmailHandler,
	listHandler *query.ListUsersHandler,
	statsHandler *query.GetStatsHandler,
	sessions *session.Store,
) *UserHandler {
	totalUsers := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_total_users",
			Help: "Total number of registered accounts",
		},
	)
	prometheus.MustRegister(totalUsers)

	return &UserHandler{
		registerHandler:   registerHandler,
		loginHandler:      loginHandler,
		updateHandler:     updateHandler,
		changeRoleHandler: changeRoleHandler,
		deleteHandler:     deleteHandler,
		getHandler:        getHandler,
		checkEmailHandler: checkEmailHandler,
		listHandler:       listHandler,
		statsHandler:      statsHandler,
		sessions:          sessions,
		metrics:           httpx.NewMetrics("accounts"),
		totalUsers:        totalUsers,
	}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/api/auth/register", h.metrics.Middleware("/api/auth/register", h.Register)).Methods("POST")
	router.HandleFunc("/api/auth/login", h.metrics.Middleware("/api/auth/login", h.Login)).Methods("POST")
	router.HandleFunc("/api/auth/check-email", h.metrics.Middleware("/api/auth/check-email", h.CheckEmail)).Methods("GET")

	// Authenticated routes
	router.HandleFunc("/api/auth/logout", h.metrics.Middleware("/api/auth/logout", httpx.AuthMiddleware(h.Logout))).Methods("POST")
	router.HandleFunc("/api/profile", h.metrics.Middleware("/api/profile", httpx.AuthMiddleware(h.GetProfile))).Methods("GET")
	router.HandleFunc("/api/profile", h.metrics.Middleware("/api/profile", httpx.AuthMiddleware(h.UpdateProfile))).Methods("PUT")

	// Admin routes
	router.HandleFunc("/api/users", h.metrics.Middleware("/api/users", httpx.AdminMiddleware(h.ListUsers))).Methods("GET")
	router.HandleFunc("/api/users/stats", h.metrics.Middleware("/api/users/stats", httpx.AdminMiddleware(h.GetStats))).Methods("GET")
	router.HandleFunc("/api/users/{id}/role", h.metrics.Middleware("/api/users/{id}/role", httpx.AdminMiddleware(h.ChangeRole))).Methods("PATCH")
	router.HandleFunc("/api/users/{id}", h.metrics.Middleware("/api/users/{id}", httpx.AdminMiddleware(h.DeleteUser))).Methods("DELETE")
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Password  string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.registerHandler.Handle(r.Context(), command.RegisterUserCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Registration refused")
		if errors.Is(err, domain.ErrEmailTaken) {
			httpx.RespondError(w, http.StatusConflict, "Email is already registered")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updateUsersMetric(r)

	// Registration authenticates the new account right away, carrying over
	// any anonymous browsing session.
	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to issue token after registration")
		httpx.RespondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = user.ID
	}
	replayed, res := h.sessions.Login(r.Context(), sessionID, user)
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist session after registration")
	}

	data := map[string]interface{}{
		"token": token,
		"user":  user.ToPublic(),
	}
	if replayed != nil {
		data["replayed_action"] = replayed
	}

	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Account created successfully",
		Data:    data,
	})
}

// Login handles POST /api/auth/login. When the request carries an anonymous
// session id, that session's cart survives the login and any deferred action
// is replayed.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.loginHandler.Handle(r.Context(), command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httpx.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Login failed")
		httpx.RespondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	user, err := h.getHandler.Handle(r.Context(), query.GetUserQuery{ID: resp.User.ID})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to load account after login")
		httpx.RespondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = user.ID
	}
	replayed, res := h.sessions.Login(r.Context(), sessionID, user)
	if !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist session after login")
	}

	data := map[string]interface{}{
		"token": resp.Token,
		"user":  resp.User,
	}
	if replayed != nil {
		data["replayed_action"] = replayed
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Logged in successfully",
		Data:    data,
	})
}

// Logout handles POST /api/auth/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserID(r.Context())
	if res := h.sessions.Logout(r.Context(), userID); !res.OK() {
		logger.Error(r.Context()).Err(res.Err).Msg("Failed to persist session after logout")
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// CheckEmail handles GET /api/auth/check-email?email=...
func (h *UserHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httpx.RespondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	taken, err := h.checkEmailHandler.Handle(r.Context(), query.CheckEmailQuery{Email: email})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to check email")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to check email")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    map[string]bool{"taken": taken},
	})
}

// GetProfile handles GET /api/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserID(r.Context())

	user, err := h.getHandler.Handle(r.Context(), query.GetUserQuery{ID: userID})
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, "Account not found")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    user.ToPublic(),
	})
}

// UpdateProfile handles PUT /api/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserID(r.Context())

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Avatar    *string `json:"avatar"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.updateHandler.Handle(r.Context(), command.UpdateProfileCommand{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
	})
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Profile update refused")
		if errors.Is(err, domain.ErrAvatarTooLarge) {
			httpx.RespondError(w, http.StatusRequestEntityTooLarge, "Avatar exceeds the profile storage budget")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    user.ToPublic(),
	})
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list users")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    users,
	})
}

// ChangeRole handles PATCH /api/users/{id}/role
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.changeRoleHandler.Handle(r.Context(), command.ChangeRoleCommand{
		UserID: mux.Vars(r)["id"],
		Role:   req.Role,
	})
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Role change refused")
		if errors.Is(err, domain.ErrNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "Account not found")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Role updated successfully",
		Data:    user.ToPublic(),
	})
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteUserCommand{UserID: mux.Vars(r)["id"]}); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to delete account")
		if errors.Is(err, domain.ErrNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "Account not found")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updateUsersMetric(r)

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Message: "Account deleted successfully",
	})
}

// GetStats handles GET /api/users/stats
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get stats")
		httpx.RespondError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    stats,
	})
}

func (h *UserHandler) updateUsersMetric(r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context())
	if err == nil {
		h.totalUsers.Set(float64(stats.TotalUsers))
	}
}
