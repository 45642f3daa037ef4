package service

import "errors"

var (
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("service: email already registered")

	// ErrInvalidCredentials covers both unknown-email and wrong-password so
	// login responses cannot be used to probe which accounts exist.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrMalformedToken is returned when a refresh token does not parse as
	// "<session id>.<secret>".
	ErrMalformedToken = errors.New("service: malformed refresh token")

	// Redemption failures. Handlers collapse all of these to a single 401;
	// the distinction exists for logs.
	ErrSessionNotFound = errors.New("service: refresh session not found")
	ErrSessionRevoked  = errors.New("service: refresh session revoked")
	ErrSessionExpired  = errors.New("service: refresh session expired")
	ErrSecretMismatch  = errors.New("service: refresh secret mismatch")

	// ErrUnauthenticated is returned for any access token that fails
	// validation or maps to no usable account.
	ErrUnauthenticated = errors.New("service: unauthenticated")
)
