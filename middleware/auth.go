package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/services"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "user_role"
)

type Authenticator struct {
	auth services.AuthService
}

func NewAuthenticator(auth services.AuthService) *Authenticator {
	return &Authenticator{auth: auth}
}

// RequireAuth validates the bearer token and stores the caller identity in
// the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := a.auth.ParseToken(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

func UserRole(ctx context.Context) (models.UserRole, bool) {
	role, ok := ctx.Value(roleKey).(models.UserRole)
	return role, ok
}
