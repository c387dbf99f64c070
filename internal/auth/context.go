package auth

import (
	"context"

	"catalog-api/internal/model"
)

type contextKey string

const principalContextKey contextKey = "principal"

func WithPrincipal(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, principalContextKey, user)
}

func PrincipalFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(principalContextKey).(model.User)
	return user, ok
}
