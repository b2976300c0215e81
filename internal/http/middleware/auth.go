package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/students-api/internal/auth"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

type claimsKey struct{}

// Authenticate rejects requests without a valid bearer token and stores
// the verified claims in the request context.
//
//	missing token → 401 Access denied
//	expired token → 401 Token expired
//	invalid token → 403 Invalid token
func Authenticate(gate *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := gate.VerifyToken(bearerToken(r.Header.Get("Authorization")))
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrTokenMissing):
				response.WriteJSON(w, http.StatusUnauthorized, response.Error("Access denied",
					"No token provided. Please include Bearer token in Authorization header."))
				return
			case errors.Is(err, auth.ErrTokenExpired):
				response.WriteJSON(w, http.StatusUnauthorized, response.Error("Token expired",
					"Your session has expired. Please login again."))
				return
			default:
				slog.Warn("rejected token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusForbidden, response.Error("Invalid token",
					"The provided token is invalid."))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticate, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
