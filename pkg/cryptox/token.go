package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RefreshSecretSize is the byte length of refresh-session secrets.
// 128 bytes of entropy makes collisions across sessions negligible.
const RefreshSecretSize = 128

// GenerateToken returns a standard-base64 string of size cryptographically
// secure random bytes.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
