package service

import (
	"context"
	"errors"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/rbac"
	"github.com/soularenas/soularenas-api/internal/auth/store"
	"github.com/soularenas/soularenas-api/pkg/jwtx"
)

// AuthorizedUser is a validated caller: the account behind the access
// token plus the permissions expanded from its roles.
type AuthorizedUser struct {
	User        domain.User
	Permissions rbac.PermissionSet
}

// Authorizer turns bearer access tokens into authorized users. It is
// stateless and safe for concurrent use.
type Authorizer struct {
	tokens *jwtx.Codec
	store  store.Store
	roles  *rbac.Resolver
}

func NewAuthorizer(tokens *jwtx.Codec, st store.Store, roles *rbac.Resolver) *Authorizer {
	return &Authorizer{tokens: tokens, store: st, roles: roles}
}

// Authenticate validates the access token and loads the user it names.
// Every failure mode comes back as ErrUnauthenticated so callers cannot
// distinguish a bad signature from a deleted account.
func (a *Authorizer) Authenticate(ctx context.Context, accessToken string) (AuthorizedUser, error) {
	claims, err := a.tokens.Validate(accessToken)
	if err != nil {
		return AuthorizedUser{}, ErrUnauthenticated
	}

	userID, err := claims.UserID()
	if err != nil {
		return AuthorizedUser{}, ErrUnauthenticated
	}

	user, err := a.store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return AuthorizedUser{}, ErrUnauthenticated
	}
	if err != nil {
		return AuthorizedUser{}, err
	}

	if user.IsDeleted || !user.IsActive {
		return AuthorizedUser{}, ErrUnauthenticated
	}

	return AuthorizedUser{
		User:        user,
		Permissions: a.roles.ExpandRoles(user.Roles),
	}, nil
}
