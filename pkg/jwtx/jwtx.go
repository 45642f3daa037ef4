// Package jwtx issues and validates the short-lived HS256 access tokens
// that prove a user's identity for a single request window.
package jwtx

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soularenas/soularenas-api/pkg/idx"
)

const (
	// Issuer and Audience are fixed claims checked on every validation.
	Issuer   = "SoulArenasAPI"
	Audience = "SoulArenasAPIClientUser"

	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 15 * time.Minute
)

var (
	ErrSignatureInvalid = errors.New("jwtx: token signature invalid")
	ErrTokenExpired     = errors.New("jwtx: token expired")
)

// Claims carried by an access token. Only registered claims are used; the
// subject is the decimal user id.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a user id.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("jwtx: subject is not a user id: %w", err)
	}
	return id, nil
}

// Codec signs and verifies access tokens with a single symmetric key.
type Codec struct {
	key []byte
}

func NewCodec(secretKey string) (*Codec, error) {
	if secretKey == "" {
		return nil, errors.New("jwtx: secret key must not be empty")
	}
	return &Codec{key: []byte(secretKey)}, nil
}

// Issue signs a token for the user expiring AccessTokenTTL from now and
// returns the token along with its expiry. A ULID jti keeps tokens issued
// within the same second distinct.
func (c *Codec) Issue(userID int64) (string, time.Time, error) {
	now := time.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(AccessTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: signing access token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate verifies signature, issuer, audience, and expiry, and returns
// the token's claims. No clock-skew leeway is applied.
func (c *Codec) Validate(token string) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	default:
		return Claims{}, fmt.Errorf("jwtx: token validation failed: %w", err)
	}
}
