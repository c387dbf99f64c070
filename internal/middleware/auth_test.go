package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"
)

type stubResolver struct {
	users map[int64]model.User
	err   error
}

func (s stubResolver) Resolve(_ context.Context, claims *model.AuthClaims) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	id, err := auth.SubjectID(claims)
	if err != nil {
		return model.User{}, err
	}
	user, ok := s.users[id]
	if !ok {
		return model.User{}, auth.ErrPrincipalNotFound
	}
	return user, nil
}

func newTestGate(t *testing.T, resolver principalResolver) (*AuthMiddleware, *auth.TokenManager) {
	t.Helper()

	tokens, err := auth.NewTokenManager("middleware-test-secret", time.Hour)
	require.NoError(t, err)

	return NewAuthMiddleware(tokens, resolver), tokens
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-Principal", user.Email)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	users := map[int64]model.User{
		1: {ID: 1, Email: "admin@x.com", Role: model.RoleAdmin},
	}
	gate, tokens := newTestGate(t, stubResolver{users: users})
	handler := gate.RequireAuth(principalEcho())

	valid, err := tokens.Issue(1, model.RoleAdmin)
	require.NoError(t, err)
	orphan, err := tokens.Issue(99, model.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantBody: "missing or invalid authorization header"},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized, wantBody: "missing or invalid authorization header"},
		{name: "empty bearer", header: "Bearer   ", wantStatus: http.StatusUnauthorized, wantBody: "missing or invalid authorization header"},
		{name: "garbage token", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
		{name: "deleted user", header: "Bearer " + orphan, wantStatus: http.StatusUnauthorized, wantBody: "user not found"},
		{name: "valid", header: "bearer " + valid, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
			} else {
				assert.Equal(t, "admin@x.com", rec.Header().Get("X-Principal"))
			}
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	gate, _ := newTestGate(t, stubResolver{})
	expiredIssuer, err := auth.NewTokenManager("middleware-test-secret", time.Nanosecond)
	require.NoError(t, err)

	token, err := expiredIssuer.Issue(1, model.RoleAdmin)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.RequireAuth(principalEcho()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestRequireAuth_ResolverFailure(t *testing.T) {
	gate, tokens := newTestGate(t, stubResolver{err: errors.New("connection refused")})
	token, err := tokens.Issue(1, model.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.RequireAuth(principalEcho()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRequireRoles(t *testing.T) {
	gate := NewAuthMiddleware(nil, nil)
	handler := gate.RequireRoles(model.RoleAdmin)(principalEcho())

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), model.User{ID: 2, Email: "u@x.com", Role: model.RoleUser}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), `"FORBIDDEN"`)
	})

	t.Run("role allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), model.User{ID: 1, Email: "a@x.com", Role: "ADMIN"}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
