package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"tripdesk/pkg/logger"
)

const identityKey contextKey = "identity_email"

// AdminGate is the authorization predicate gating every admin route. Backed
// by the admins collection in production, by fakes in tests.
type AdminGate interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// IdentityFromContext returns the authenticated caller's email, or "".
func IdentityFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(identityKey).(string); ok {
		return email
	}
	return ""
}

// AdminAuth verifies the bearer token and checks the caller's email against
// the admin allow-list before any other logic runs. The token itself is
// minted by the identity provider; this service only verifies it.
func AdminAuth(secret string, gate AdminGate, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := emailFromBearerToken(r, secret)
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			isAdmin, err := gate.IsAdmin(r.Context(), email)
			if err != nil {
				log.Error("Admin lookup failed",
					"request_id", RequestIDFromContext(r.Context()),
					"email", email,
					"error", err,
				)
				writeAuthError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !isAdmin {
				log.Warn("Non-admin caller rejected",
					"request_id", RequestIDFromContext(r.Context()),
					"email", email,
					"path", r.URL.Path,
				)
				writeAuthError(w, http.StatusForbidden, "Not an admin")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func emailFromBearerToken(r *http.Request, secret string) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", fmt.Errorf("malformed Authorization header")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token has no email claim")
	}
	return email, nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"message":%q}`, message)
}
