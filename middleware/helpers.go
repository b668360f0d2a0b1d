package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/bridge-judging/services"
)

var ErrNoPrincipal = errors.New("principal not found in context")

func WithPrincipal(ctx context.Context, principal *services.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func GetPrincipalFromContext(ctx context.Context) (*services.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(*services.Principal)
	if !ok || principal == nil {
		return nil, ErrNoPrincipal
	}
	return principal, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
