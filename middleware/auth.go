package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/services"
)

type contextKey string

const principalContextKey contextKey = "principal"

// TokenResolver is the part of services.AuthService the gate needs.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*services.Principal, error)
}

// Authenticate resolves the bearer token (or the token query parameter,
// which browsers need for websocket upgrades) and attaches the principal.
func Authenticate(resolver TokenResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrAuthenticationFailed) {
					logger.ErrorContext(r.Context(), "failed to resolve token", slog.Any("error", err))
					writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
					return
				}
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Authorize lets the request through only for the given roles.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := GetPrincipalFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if principal.User.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "your role does not have access to this resource")
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
