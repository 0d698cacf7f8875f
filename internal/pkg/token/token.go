package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewVerifyToken generates a cryptographically random 64-character hex token
// used as a single-use email verification token.
func NewVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verify token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
