package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.RefreshSession) (domain.RefreshSession, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_sessions (user_id, token_hash, device_info,
			ip_address, user_agent, created_at, last_modified, expires_at,
			revoked_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.TokenHash, s.DeviceInfo,
		s.IPAddress, s.UserAgent, s.CreatedAt, s.LastModified, s.ExpiresAt,
		nullTime(s.RevokedAt), nullTime(s.LastUsedAt),
	)
	if err != nil {
		return domain.RefreshSession{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.RefreshSession{}, err
	}
	s.ID = id

	return s, nil
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id int64) (domain.RefreshSession, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, device_info, ip_address, user_agent,
			created_at, last_modified, expires_at, revoked_at, last_used_at
		FROM refresh_sessions WHERE id = ?`, id)

	var s domain.RefreshSession
	var revokedAt, lastUsedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.DeviceInfo, &s.IPAddress, &s.UserAgent,
		&s.CreatedAt, &s.LastModified, &s.ExpiresAt, &revokedAt, &lastUsedAt,
	)
	if err != nil {
		return domain.RefreshSession{}, mapNotFound(err)
	}

	s.RevokedAt = timePtr(revokedAt)
	s.LastUsedAt = timePtr(lastUsedAt)
	return s, nil
}

// MarkRedeemed guards on revoked_at IS NULL so that concurrent redemptions
// of the same session can succeed at most once.
func (r *sessionsRepo) MarkRedeemed(ctx context.Context, id int64, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_sessions
		SET revoked_at = ?, last_used_at = ?, last_modified = ?
		WHERE id = ? AND revoked_at IS NULL`,
		at, at, at, id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
