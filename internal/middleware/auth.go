package middleware

import (
	"net/http"
	"strings"

	"eclat-backend/internal/auth"
	"eclat-backend/internal/models"
	"eclat-backend/internal/transport"
)

// RequireAuth extracts and verifies a bearer token, then injects the claims
// into the request context. Missing and invalid tokens both yield 401: the
// caller has no usable credentials either way.
func RequireAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				transport.WriteError(w, http.StatusUnauthorized, "missing authorization header", nil)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				transport.WriteError(w, http.StatusUnauthorized, "invalid authorization header", nil)
				return
			}

			claims, err := manager.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin assumes RequireAuth ran earlier in the chain. Authenticated
// but non-admin callers get 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil || claims.Role != models.RoleAdmin {
			transport.WriteError(w, http.StatusForbidden, "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
