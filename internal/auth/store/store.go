package store

import (
	"context"
	"errors"
	"time"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by concrete drivers.
// It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	RefreshSessions() RefreshSessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Use it for multi-step operations that must be
	// atomic (e.g. refresh redemption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user and returns it with the generated id.
	// Returns ErrAlreadyExists when the email is already taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail returns a user by its already-normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type RefreshSessions interface {
	// CreateSession inserts a new refresh session and returns it with the
	// generated id. The session id is the public half of the wire token.
	CreateSession(ctx context.Context, s domain.RefreshSession) (domain.RefreshSession, error)

	// GetSessionByID returns a session by id, revoked or not.
	GetSessionByID(ctx context.Context, id int64) (domain.RefreshSession, error)

	// MarkRedeemed sets revoked_at and last_used_at on a not-yet-revoked
	// session. Returns ErrNotFound when the session does not exist or was
	// already revoked, which makes redemption single-use even under
	// concurrent attempts.
	MarkRedeemed(ctx context.Context, id int64, at time.Time) error
}
