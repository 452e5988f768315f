package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"

	RoleAdmin = "admin"
)

type contextKey string

const (
	userIDKey   = contextKey("userID")
	userRoleKey = contextKey("userRole")
)

// AuthMiddleware извлекает пользователя из заголовков, которые проставляет API Gateway.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(userIDHeader)
		if userIDStr == "" {
			WriteJSONError(w, http.StatusUnauthorized, "X-User-ID header is missing")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid X-User-ID header format")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, strings.ToLower(strings.TrimSpace(r.Header.Get(userRoleHeader))))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает только пользователей с нужной ролью. Ставится после AuthMiddleware.
func RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(userRoleKey).(string)
			if role != requiredRole {
				WriteJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
