package auth

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/model"
)

var ErrPrincipalNotFound = errors.New("principal not found")

type userFinder interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
}

// PrincipalResolver turns verified claims into the live user record. Tokens
// of deleted users stop resolving on the next request.
type PrincipalResolver struct {
	users userFinder
}

func NewPrincipalResolver(users userFinder) *PrincipalResolver {
	return &PrincipalResolver{users: users}
}

func (r *PrincipalResolver) Resolve(ctx context.Context, claims *model.AuthClaims) (model.User, error) {
	id, err := SubjectID(claims)
	if err != nil {
		return model.User{}, err
	}

	user, err := r.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, ErrPrincipalNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("resolve principal %d: %w", id, err)
	}

	return user, nil
}
