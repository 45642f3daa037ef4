package cryptox

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Changing any of these invalidates stored hashes.
const (
	saltSize   = 32
	keySize    = 32
	iterations = 100_000
)

// HashPassword derives a PBKDF2-HMAC-SHA512 key from the password with a
// fresh 32-byte random salt and returns "base64(salt):base64(key)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha512.New)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches an encoded hash produced
// by HashPassword. Malformed input is treated as a mismatch, never an
// error, and the hash comparison is constant-time.
func VerifyPassword(password, encoded string) bool {
	saltPart, hashPart, ok := strings.Cut(encoded, ":")
	if !ok || saltPart == "" || hashPart == "" {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(hashPart)
	if err != nil {
		return false
	}
	if len(expected) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha512.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
