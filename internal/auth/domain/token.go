package domain

import "time"

// TokenPair is what login and refresh hand back to the client: a signed
// access token plus the opaque "<session id>.<secret>" refresh token.
type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	TokenType       string    `json:"token_type"` // always "Bearer"
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token"`
}
