package auth

import (
	"context"
	"errors"
	"strings"

	internaljwt "github.com/makebyjordan/chatbot-crm/internal/jwt"
)

const bearerPrefix = "Bearer "

type Service struct {
	repo Repository
}

var (
	createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
	refreshToken           = internaljwt.RefreshToken
	parseToken             = internaljwt.ParseToken
)

// SetTokenIssuer swaps the token issuer, mainly for tests. nil restores the
// default.
func SetTokenIssuer(issuer func(context.Context, internaljwt.User, internaljwt.Role) (internaljwt.TokenResponse, error)) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
}

func New(adminEmail, adminPasswordHash string) *Service {
	return NewWithRepository(NewEnvRepository(adminEmail, adminPasswordHash))
}

func NewWithRepository(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	if email == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	admin, err := s.repo.FindAdmin(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to fetch admin", err)
	}
	if !internaljwt.ValidatePassword(admin.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	tokens, err := createTokenWithRefresh(ctx, admin, internaljwt.RoleAdmin)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{
		Admin:  Identity{UserID: admin.Id, Email: admin.Email},
		Tokens: tokens,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, token string) (internaljwt.TokenResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return internaljwt.TokenResponse{}, newError(ErrorCodeValidation, "refresh token is required", nil)
	}

	tokens, err := refreshToken(ctx, token, internaljwt.RoleAdmin)
	if err != nil {
		return internaljwt.TokenResponse{}, newError(ErrorCodeUnauthorized, "invalid refresh token", err)
	}
	return tokens, nil
}

func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	return s.identityFromToken(strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)))
}

func (s *Service) identityFromToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}

	claims, err := parseToken(token, internaljwt.RoleAdmin)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	userID, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "token missing identifiers", nil)
	}

	return Identity{UserID: userID, Email: email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
