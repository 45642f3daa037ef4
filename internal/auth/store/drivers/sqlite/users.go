package sqlite

import (
	"context"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, username, password_hash, roles_raw,
	is_active, is_deleted, is_email_verified, created_at, last_modified`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (email, username, password_hash, roles_raw,
			is_active, is_deleted, is_email_verified, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Username, u.PasswordHash, joinRoles(u.Roles),
		u.IsActive, u.IsDeleted, u.IsEmailVerified, u.CreatedAt, u.LastModified,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id

	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	var rolesRaw string

	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &rolesRaw,
		&u.IsActive, &u.IsDeleted, &u.IsEmailVerified, &u.CreatedAt, &u.LastModified,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Roles = splitRoles(rolesRaw)
	return u, nil
}
