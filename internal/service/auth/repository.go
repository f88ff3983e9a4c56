package auth

import (
	"context"
	"errors"
	"strings"

	internaljwt "github.com/makebyjordan/chatbot-crm/internal/jwt"
)

var ErrNotFound = errors.New("auth repository: not found")

// Repository resolves dashboard administrators by email.
type Repository interface {
	FindAdmin(ctx context.Context, email string) (internaljwt.User, error)
}

// EnvRepository serves the single administrator configured through
// ADMIN_EMAIL and ADMIN_PASSWORD_HASH.
type EnvRepository struct {
	email        string
	passwordHash string
}

func NewEnvRepository(email, passwordHash string) Repository {
	return &EnvRepository{
		email:        normalizeEmail(email),
		passwordHash: strings.TrimSpace(passwordHash),
	}
}

func (r *EnvRepository) FindAdmin(ctx context.Context, email string) (internaljwt.User, error) {
	if r.email == "" || r.passwordHash == "" || normalizeEmail(email) != r.email {
		return internaljwt.User{}, ErrNotFound
	}
	return internaljwt.User{
		Id:           "admin",
		Email:        r.email,
		PasswordHash: r.passwordHash,
	}, nil
}
