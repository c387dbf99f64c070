package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-api/internal/model"
)

type userStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, digest string) bool
}

type tokenIssuer interface {
	Issue(subjectID int64, role string) (string, error)
}

type AuthService struct {
	users  userStore
	hasher passwordHasher
	tokens tokenIssuer
}

func NewAuthService(users userStore, hasher passwordHasher, tokens tokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account. The email is stored lowercased and the role
// defaults to user.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Login returns a signed access token. Unknown emails and wrong passwords
// fail the same way.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return model.LoginResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token for user %d: %w", user.ID, err)
	}

	return model.LoginResponse{AccessToken: token}, nil
}
