package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/makebyjordan/chatbot-crm/utils"

	"github.com/golang-jwt/jwt"
)

func appendRoleChar(token string, role Role) string {
	switch role {
	case RoleAdmin:
		return token + "a"
	}
	return token
}

func expectedRoleChar(role Role) string {
	switch role {
	case RoleAdmin:
		return "a"
	}
	return ""
}

func CreateToken(user User, role Role, validUntil int64) (string, error) {
	secret, ok := secretFor(role)
	if !ok {
		return "", fmt.Errorf("invalid role specified")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(AccessTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"id":    user.Id,
		"email": user.Email,
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return appendRoleChar(tokenString, role), nil
}

func CreateTokenWithRefresh(ctx context.Context, user User, role Role) (TokenResponse, error) {
	s := store()
	if s == nil {
		return TokenResponse{}, errors.New("refresh token store not configured")
	}

	expiresAt := time.Now().Add(AccessTokenTTL).Unix()
	accessToken, err := CreateToken(user, role, expiresAt)
	if err != nil {
		return TokenResponse{}, err
	}

	refreshTokenRaw, err := utils.CreateToken()
	if err != nil {
		return TokenResponse{}, fmt.Errorf("generate refresh token: %w", err)
	}

	userDataJSON, err := json.Marshal(map[string]string{
		"id":    user.Id,
		"email": user.Email,
	})
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.Set(ctx, refreshTokenRaw, string(userDataJSON), RefreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: appendRoleChar(refreshTokenRaw, role),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates an access token (signature, expiry, role suffix).
func ParseToken(tokenString string, role Role) (jwt.MapClaims, error) {
	if len(tokenString) == 0 {
		return nil, fmt.Errorf("token string is empty")
	}

	if tokenString[len(tokenString)-1:] != expectedRoleChar(role) {
		return nil, fmt.Errorf("invalid role character in token")
	}
	tokenString = tokenString[:len(tokenString)-1]

	secret, ok := secretFor(role)
	if !ok {
		return nil, fmt.Errorf("invalid role specified")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid - unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("claims of unauthorized type")
	}

	return claims, nil
}

// RefreshToken exchanges a refresh token for a new access token and slides
// the refresh token's expiry.
func RefreshToken(ctx context.Context, refreshToken string, role Role) (TokenResponse, error) {
	if len(refreshToken) == 0 {
		return TokenResponse{}, fmt.Errorf("refresh token is empty")
	}
	if refreshToken[len(refreshToken)-1:] != expectedRoleChar(role) {
		return TokenResponse{}, fmt.Errorf("invalid role character in refresh token")
	}
	refreshTokenRaw := refreshToken[:len(refreshToken)-1]

	s := store()
	if s == nil {
		return TokenResponse{}, errors.New("refresh token store not configured")
	}

	val, err := s.Get(ctx, refreshTokenRaw)
	if err != nil {
		return TokenResponse{}, err
	}

	var userData map[string]string
	if err := json.Unmarshal([]byte(val), &userData); err != nil {
		return TokenResponse{}, fmt.Errorf("invalid token data")
	}

	if err := s.Expire(ctx, refreshTokenRaw, RefreshTokenTTL); err != nil {
		return TokenResponse{}, fmt.Errorf("failed to update refresh token expiration: %v", err)
	}

	expiresAt := time.Now().Add(AccessTokenTTL).Unix()
	accessToken, err := CreateToken(User{Id: userData["id"], Email: userData["email"]}, role, expiresAt)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}
