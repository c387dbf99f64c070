package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.AuthClaims, error)
}

type principalResolver interface {
	Resolve(ctx context.Context, claims *model.AuthClaims) (model.User, error)
}

// AuthMiddleware is the access gate: RequireAuth authenticates the bearer
// token and RequireRoles authorizes the resolved principal.
type AuthMiddleware struct {
	verifier tokenVerifier
	resolver principalResolver
}

func NewAuthMiddleware(verifier tokenVerifier, resolver principalResolver) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, resolver: resolver}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrExpiredCredential) {
				message = "token expired"
			}
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		user, err := m.resolver.Resolve(r.Context(), claims)
		switch {
		case errors.Is(err, auth.ErrPrincipalNotFound), errors.Is(err, auth.ErrMalformedCredential):
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user not found")
			return
		case err != nil:
			slog.Error("principal resolution failed", "error", err, "subject", claims.Subject)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), user)))
	})
}

// RequireRoles admits principals whose role is in allowedRoles. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, exists := roleSet[strings.ToLower(user.Role)]; !exists {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
