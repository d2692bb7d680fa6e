package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/tair/storefront/pkg/auth"
	"github.com/tair/storefront/pkg/logger"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	RoleKey   contextKey = "role"
)

// UserID returns the authenticated user id from the request context, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}

// Role returns the authenticated role from the request context, if any.
func Role(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

func claimsFromHeader(r *http.Request) (*auth.Claims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Authorization header required"
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := auth.ValidateToken(parts[1])
	if err != nil {
		return nil, "Invalid token"
	}
	return claims, ""
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	ctx = context.WithValue(ctx, RoleKey, claims.Role)
	return r.WithContext(ctx)
}

// AuthMiddleware validates the JWT token and puts the claims on the request
// context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, errMsg := claimsFromHeader(r)
		if claims == nil {
			logger.Warn(r.Context()).Str("path", r.URL.Path).Msg(errMsg)
			RespondError(w, http.StatusUnauthorized, errMsg)
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	}
}

// AdminMiddleware checks if user has admin role
func AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		role, ok := Role(r.Context())
		if !ok || role != "admin" {
			logger.Warn(r.Context()).Str("role", role).Msg("Admin access denied")
			RespondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuthMiddleware validates the JWT token if present, but doesn't
// require it. Anonymous requests pass through without claims on the context.
func OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, _ := claimsFromHeader(r); claims != nil {
			r = withClaims(r, claims)
		}
		next.ServeHTTP(w, r)
	}
}
