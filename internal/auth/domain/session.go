package domain

import "time"

// RefreshSession is the server-side record behind a refresh token. The
// plaintext secret is never stored; only its hash. Sessions are soft-revoked
// and retained for audit, never deleted.
type RefreshSession struct {
	ID           int64
	UserID       int64
	TokenHash    string // PBKDF2 hash of the wire token's secret half
	DeviceInfo   string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	LastModified time.Time
	ExpiresAt    time.Time // always CreatedAt + 7 days at creation
	RevokedAt    *time.Time
	LastUsedAt   *time.Time
}

// Active reports whether the session can still be redeemed at the given
// instant. Revocation is terminal.
func (s RefreshSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
