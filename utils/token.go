package utils

import (
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the length of tokens produced by CreateToken.
const TokenLength = 64

// CreateToken returns 64 lowercase hex characters built from two random
// (version 4) UUIDs, giving 244 bits of entropy.
func CreateToken() (string, error) {
	firstUUID, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	secondUUID, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	token := strings.ReplaceAll(firstUUID.String()+secondUUID.String(), "-", "")

	return token, nil
}

// IsToken reports whether s has the shape produced by CreateToken.
func IsToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
