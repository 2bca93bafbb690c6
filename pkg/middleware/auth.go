package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/buy01/order-service/pkg/auth"
	"github.com/buy01/order-service/pkg/response"
)

type identityKey struct{}

// identity is the authenticated caller resolved from the bearer token.
type identity struct {
	UserID string
	Role   string
}

// Auth validates the Authorization bearer token and stores the caller's
// identity in the request context. Ownership checks still happen in the
// service layer; this middleware only establishes who is calling.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromCtx returns the authenticated caller's user id.
func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// RoleFromCtx returns the authenticated caller's role.
func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.Role == "" {
		return "", false
	}
	return id.Role, true
}
