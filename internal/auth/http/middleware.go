package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/soularenas/soularenas-api/internal/auth/service"
	"github.com/soularenas/soularenas-api/pkg/httpx"
)

type authedUserKey struct{}

// AuthnMiddleware validates the bearer access token and attaches the
// authorized user to the request context. Requests without a valid token
// get a 401.
func AuthnMiddleware(authorizer *service.Authorizer) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			authed, err := authorizer.Authenticate(r.Context(), token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), authedUserKey{}, authed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects authenticated callers whose expanded role set
// lacks the permission. Must run after AuthnMiddleware.
func RequirePermission(permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authed, ok := AuthorizedUserFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			if !authed.Permissions.Has(permission) {
				httpx.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizedUserFromContext returns the user attached by AuthnMiddleware.
func AuthorizedUserFromContext(ctx context.Context) (service.AuthorizedUser, bool) {
	authed, ok := ctx.Value(authedUserKey{}).(service.AuthorizedUser)
	return authed, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
