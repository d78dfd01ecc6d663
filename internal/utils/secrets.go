package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecret returns a URL-safe base64 secret of byteLength random bytes
func GenerateSecret(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// GenerateJWTSecret returns a 256-bit session signing secret
func GenerateJWTSecret() (string, error) {
	secret, err := GenerateSecret(32) // 256-bit
	if err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}
