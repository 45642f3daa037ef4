package service_test

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/service"
	"github.com/soularenas/soularenas-api/internal/auth/store"
	"github.com/soularenas/soularenas-api/internal/auth/store/drivers/sqlite"
	"github.com/soularenas/soularenas-api/pkg/cryptox"
	"github.com/soularenas/soularenas-api/pkg/jwtx"
)

const testSecretKey = "test-secret-key-not-for-production"

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newAuthService(t *testing.T) (*service.AuthService, *sqlite.Store, *jwtx.Codec) {
	t.Helper()

	st := newTestStore(t)
	codec, err := jwtx.NewCodec(testSecretKey)
	require.NoError(t, err)

	return service.NewAuthService(st, codec), st, codec
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)

	t.Run("creates user with generated username", func(t *testing.T) {
		user, err := svc.Register(ctx, "New.Player@Example.COM", "hunter22")
		require.NoError(t, err)

		require.Positive(t, user.ID)
		require.Equal(t, "new.player@example.com", user.Email)
		require.Regexp(t, regexp.MustCompile(`^[A-Za-z]+#\d{3}$`), user.Username)
		require.Empty(t, user.Roles)
		require.True(t, user.IsActive)
		require.True(t, cryptox.VerifyPassword("hunter22", user.PasswordHash))
	})

	t.Run("duplicate email rejected case-insensitively", func(t *testing.T) {
		_, err := svc.Register(ctx, "dup@example.com", "hunter22")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "DUP@example.com", "other-password")
		require.ErrorIs(t, err, service.ErrDuplicateEmail)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, st, codec := newAuthService(t)
	meta := service.ClientMeta{DeviceInfo: "Mac PC", IPAddress: "203.0.113.7", UserAgent: "Mozilla/5.0"}

	registered, err := svc.Register(ctx, "login@example.com", "correct horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, pair, err := svc.Login(ctx, "Login@Example.com", "correct horse", meta)
		require.NoError(t, err)
		require.Equal(t, registered.ID, user.ID)

		require.Equal(t, "Bearer", pair.TokenType)
		require.WithinDuration(t, time.Now().Add(jwtx.AccessTokenTTL), pair.AccessExpiresAt, time.Minute)

		claims, err := codec.Validate(pair.AccessToken)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		require.Equal(t, registered.ID, id)

		// Refresh token carries the new session's id before the first dot.
		idStr, secret, ok := strings.Cut(pair.RefreshToken, ".")
		require.True(t, ok)
		require.NotEmpty(t, secret)

		sess, err := st.RefreshSessions().GetSessionByID(ctx, mustParseID(t, idStr))
		require.NoError(t, err)
		require.Equal(t, registered.ID, sess.UserID)
		require.Equal(t, "Mac PC", sess.DeviceInfo)
		require.True(t, cryptox.VerifyPassword(secret, sess.TokenHash))
		require.NotEqual(t, secret, sess.TokenHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "login@example.com", "incorrect horse", meta)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "correct horse", meta)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		hash, err := cryptox.HashPassword("pw")
		require.NoError(t, err)

		now := time.Now().UTC()
		_, err = st.Users().CreateUser(ctx, domain.User{
			Email:        "inactive@example.com",
			Username:     "IdleGnome#404",
			PasswordHash: hash,
			IsActive:     false,
			CreatedAt:    now,
			LastModified: now,
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "inactive@example.com", "pw", meta)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newAuthService(t)
	meta := service.ClientMeta{DeviceInfo: "iOS Device"}

	_, err := svc.Register(ctx, "refresh@example.com", "pw")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "refresh@example.com", "pw", meta)
	require.NoError(t, err)

	t.Run("rotation", func(t *testing.T) {
		rotated, err := svc.Refresh(ctx, pair.RefreshToken, meta)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		require.NotEqual(t, pair.AccessToken, rotated.AccessToken)

		// The presented session is now revoked.
		idStr, _, _ := strings.Cut(pair.RefreshToken, ".")
		sess, err := st.RefreshSessions().GetSessionByID(ctx, mustParseID(t, idStr))
		require.NoError(t, err)
		require.NotNil(t, sess.RevokedAt)
		require.NotNil(t, sess.LastUsedAt)

		// Reuse of the rotated-out token fails.
		_, err = svc.Refresh(ctx, pair.RefreshToken, meta)
		require.ErrorIs(t, err, service.ErrSessionRevoked)

		// The replacement still works.
		_, err = svc.Refresh(ctx, rotated.RefreshToken, meta)
		require.NoError(t, err)
	})

	t.Run("issue and redeem directly", func(t *testing.T) {
		user, err := st.Users().GetUserByEmail(ctx, "refresh@example.com")
		require.NoError(t, err)

		wire, err := svc.IssueRefreshSession(ctx, user.ID, meta)
		require.NoError(t, err)
		require.Regexp(t, `^\d+\.`, wire)

		redeemed, err := svc.RedeemRefreshToken(ctx, wire)
		require.NoError(t, err)
		require.Equal(t, user.ID, redeemed.ID)

		_, err = svc.RedeemRefreshToken(ctx, wire)
		require.ErrorIs(t, err, service.ErrSessionRevoked)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		for _, token := range []string{
			"",
			"no-dot-at-all",
			".secretonly",
			"42.",
			"notanumber.c2VjcmV0",
			"-1.c2VjcmV0",
		} {
			_, err := svc.Refresh(ctx, token, meta)
			require.ErrorIs(t, err, service.ErrMalformedToken, "token %q", token)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "999999.c2VjcmV0", meta)
		require.ErrorIs(t, err, service.ErrSessionNotFound)
	})

	t.Run("secret mismatch", func(t *testing.T) {
		_, fresh, err := svc.Login(ctx, "refresh@example.com", "pw", meta)
		require.NoError(t, err)

		idStr, _, _ := strings.Cut(fresh.RefreshToken, ".")
		_, err = svc.Refresh(ctx, idStr+".d3JvbmdzZWNyZXQ=", meta)
		require.ErrorIs(t, err, service.ErrSecretMismatch)

		// A mismatch does not revoke the session; the real token still works.
		_, err = svc.Refresh(ctx, fresh.RefreshToken, meta)
		require.NoError(t, err)
	})

	t.Run("expired session", func(t *testing.T) {
		user, err := st.Users().GetUserByEmail(ctx, "refresh@example.com")
		require.NoError(t, err)

		secret, err := cryptox.GenerateToken(cryptox.RefreshSecretSize)
		require.NoError(t, err)
		hash, err := cryptox.HashPassword(secret)
		require.NoError(t, err)

		now := time.Now().UTC()
		sess, err := st.RefreshSessions().CreateSession(ctx, domain.RefreshSession{
			UserID:       user.ID,
			TokenHash:    hash,
			CreatedAt:    now.Add(-8 * 24 * time.Hour),
			LastModified: now.Add(-8 * 24 * time.Hour),
			ExpiresAt:    now.Add(-24 * time.Hour),
		})
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, fmt.Sprintf("%d.%s", sess.ID, secret), meta)
		require.ErrorIs(t, err, service.ErrSessionExpired)

		// Expiry is checked before the secret, and the session stays unrevoked.
		stored, err := st.RefreshSessions().GetSessionByID(ctx, sess.ID)
		require.NoError(t, err)
		require.Nil(t, stored.RevokedAt)
	})
}

func mustParseID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return id
}

var _ store.Store = (*sqlite.Store)(nil)
