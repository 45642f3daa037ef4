// Package service holds the business rules of the credential authority:
// registration, login, and the rotating single-use refresh flow. Handlers
// stay thin; everything that must hold under concurrency lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/store"
	"github.com/soularenas/soularenas-api/pkg/cryptox"
	"github.com/soularenas/soularenas-api/pkg/jwtx"
	"github.com/soularenas/soularenas-api/pkg/namegen"
	"github.com/soularenas/soularenas-api/pkg/slogx"
)

// RefreshTokenTTL is the lifetime of a refresh session from creation. A
// session redeemed before expiry yields a fresh session with a full TTL.
const RefreshTokenTTL = 7 * 24 * time.Hour

// ClientMeta describes the client a session was minted for. Stored on the
// session record for audit; never used for validation.
type ClientMeta struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

// AuthService implements registration, login, and refresh rotation on top
// of a Store and a token codec.
type AuthService struct {
	store  store.Store
	tokens *jwtx.Codec
}

func NewAuthService(st store.Store, tokens *jwtx.Codec) *AuthService {
	return &AuthService{store: st, tokens: tokens}
}

// Register creates a user with a generated display name and no roles.
// The email is trimmed and lower-cased before storage so lookups are
// case-insensitive.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.store.Users().CreateUser(ctx, domain.User{
		Email:        email,
		Username:     namegen.Generate(),
		PasswordHash: hash,
		Roles:        []string{},
		IsActive:     true,
		CreatedAt:    now,
		LastModified: now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}

	slogx.FromContext(ctx).InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// Login verifies the credentials and mints a token pair. Unknown emails,
// wrong passwords, and unusable accounts all come back as
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ClientMeta) (domain.User, domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("looking up user: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	if user.IsDeleted || !user.IsActive {
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("device", meta.DeviceInfo),
	)

	return user, pair, nil
}

// Refresh redeems a "<session id>.<secret>" refresh token and rotates it:
// the presented session is revoked and a brand new session backs the
// returned pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (domain.TokenPair, error) {
	user, err := s.RedeemRefreshToken(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).InfoContext(ctx, "refresh token rotated",
		slog.Int64("user_id", user.ID),
	)

	return pair, nil
}

// RedeemRefreshToken consumes a refresh token and returns the owning user.
// Redemption is single-use even under concurrent attempts with the same
// token: the session is revoked whether or not the caller goes on to mint
// a replacement.
func (s *AuthService) RedeemRefreshToken(ctx context.Context, refreshToken string) (domain.User, error) {
	sessionID, secret, err := parseRefreshToken(refreshToken)
	if err != nil {
		return domain.User{}, err
	}

	var user domain.User
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		session, err := tx.RefreshSessions().GetSessionByID(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("looking up session: %w", err)
		}

		now := time.Now().UTC()
		switch {
		case session.RevokedAt != nil:
			return ErrSessionRevoked
		case !now.Before(session.ExpiresAt):
			return ErrSessionExpired
		case !cryptox.VerifyPassword(secret, session.TokenHash):
			return ErrSecretMismatch
		}

		// A concurrent redemption that won the race surfaces here.
		if err := tx.RefreshSessions().MarkRedeemed(ctx, session.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionRevoked
			}
			return fmt.Errorf("revoking session: %w", err)
		}

		user, err = tx.Users().GetUserByID(ctx, session.UserID)
		if err != nil {
			return fmt.Errorf("looking up session user: %w", err)
		}
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).WarnContext(ctx, "refresh rejected",
			slog.Int64("session_id", sessionID),
			slog.String("reason", err.Error()),
		)
		return domain.User{}, err
	}

	return user, nil
}

// IssueRefreshSession mints a refresh session for the user and returns its
// wire token "<session id>.<secret>". Only the hash of the secret is
// stored; the plaintext leaves this method exactly once.
func (s *AuthService) IssueRefreshSession(ctx context.Context, userID int64, meta ClientMeta) (string, error) {
	secret, err := cryptox.GenerateToken(cryptox.RefreshSecretSize)
	if err != nil {
		return "", fmt.Errorf("generating refresh secret: %w", err)
	}

	hash, err := cryptox.HashPassword(secret)
	if err != nil {
		return "", fmt.Errorf("hashing refresh secret: %w", err)
	}

	now := time.Now().UTC()
	session, err := s.store.RefreshSessions().CreateSession(ctx, domain.RefreshSession{
		UserID:       userID,
		TokenHash:    hash,
		DeviceInfo:   meta.DeviceInfo,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
		LastModified: now,
		ExpiresAt:    now.Add(RefreshTokenTTL),
	})
	if err != nil {
		return "", fmt.Errorf("creating refresh session: %w", err)
	}

	return fmt.Sprintf("%d.%s", session.ID, secret), nil
}

// issueTokens mints an access token and a backing refresh session.
func (s *AuthService) issueTokens(ctx context.Context, user domain.User, meta ClientMeta) (domain.TokenPair, error) {
	access, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.IssueRefreshSession(ctx, user.ID, meta)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:     access,
		TokenType:       "Bearer",
		AccessExpiresAt: expiresAt,
		RefreshToken:    refresh,
	}, nil
}

// parseRefreshToken splits the wire form on the FIRST dot. The secret half
// is standard base64 and never contains a dot, so no ambiguity arises.
func parseRefreshToken(token string) (int64, string, error) {
	idStr, secret, ok := strings.Cut(token, ".")
	if !ok || idStr == "" || secret == "" {
		return 0, "", ErrMalformedToken
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", ErrMalformedToken
	}

	return id, secret, nil
}
