package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modernhn/modernhn/internal/auth"
	"github.com/modernhn/modernhn/internal/models"
	"github.com/modernhn/modernhn/internal/repo"
)

type ctxKey string

const userKey ctxKey = "user"

// CurrentUser returns the authenticated user attached by Authenticate, if any.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// WithUser attaches a user to the context. Exported for handler tests.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Authenticate is the gate in front of every protected route. Single pass,
// terminal on the first failure: extract the bearer token, verify it, resolve
// the claimed user against the store, attach the user to the request context.
// Each outcome gets one audit log line.
func Authenticate(tokens *auth.Tokens, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				slog.Warn("auth rejected", "reason", "missing bearer token", "path", r.URL.Path)
				unauthorized(w, "Authentication required")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == "" {
				slog.Warn("auth rejected", "reason", "missing bearer token", "path", r.URL.Path)
				unauthorized(w, "Authentication required")
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				slog.Warn("auth rejected", "reason", "invalid token", "path", r.URL.Path)
				unauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				slog.Warn("auth rejected", "reason", "user not found", "user_id", claims.UserID, "path", r.URL.Path)
				unauthorized(w, "User not found")
				return
			}

			slog.Info("auth ok", "user_id", user.ID, "username", user.Username, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
