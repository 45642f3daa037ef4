package http

import (
	"net/http"

	"github.com/soularenas/soularenas-api/pkg/httpx"
)

// MeHandler returns the calling user. Identity comes entirely from the
// access token, so the handler itself has no dependencies.
type MeHandler struct{}

type MeResponse struct {
	UserResponse

	Permissions []string `json:"permissions"`
}

// ServeHTTP handles GET /auth/me.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authed, ok := AuthorizedUserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		UserResponse: toUserResponse(authed.User),
		Permissions:  authed.Permissions.List(),
	})
}
