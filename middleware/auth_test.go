package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/services"
)

type stubResolver map[string]*services.Principal

func (s stubResolver) Resolve(_ context.Context, token string) (*services.Principal, error) {
	if token == "boom" {
		return nil, errors.New("store unavailable")
	}
	p, ok := s[token]
	if !ok {
		return nil, services.ErrAuthenticationFailed
	}
	return p, nil
}

func gated(roles ...models.UserRole) http.Handler {
	resolver := stubResolver{
		"vol-token":   {User: models.User{UID: "v", Role: models.RoleVolunteer}},
		"judge-token": {User: models.User{UID: "j", Role: models.RoleJudge}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := GetPrincipalFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, p.User.UID)
	})
	return Authenticate(resolver, logger)(Authorize(roles...)(final))
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   int
		body   string
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic vol-token", want: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer boom", want: http.StatusInternalServerError},
		{name: "role not allowed", header: "Bearer judge-token", want: http.StatusForbidden},
		{name: "role allowed", header: "Bearer vol-token", want: http.StatusOK, body: "v"},
		{name: "query token", query: "?token=vol-token", want: http.StatusOK, body: "v"},
	}

	handler := gated(models.RoleVolunteer, models.RoleAdmin)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/checkin/teams"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestAuthorizeWithoutPrincipal(t *testing.T) {
	handler := Authorize(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
