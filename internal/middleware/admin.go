package middleware

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/clima-backend/internal/services"
)

type ctxKey int

const adminClaimsKey ctxKey = iota

// SessionVerifier resolves the admin session carried by a request.
type SessionVerifier interface {
	SessionFromRequest(r *http.Request) (*services.AdminClaims, error)
}

// RequireAdmin rejects requests without a valid admin session with 401 and
// stores the verified claims in the request context.
func RequireAdmin(auth SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.SessionFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the claims stored by RequireAdmin.
func AdminFromContext(ctx context.Context) (*services.AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*services.AdminClaims)
	return claims, ok
}
