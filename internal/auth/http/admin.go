package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/soularenas/soularenas-api/internal/auth/store"
	"github.com/soularenas/soularenas-api/pkg/httpx"
	"github.com/soularenas/soularenas-api/pkg/slogx"
)

// AdminUsersHandler exposes user lookups for administrators.
type AdminUsersHandler struct {
	Store store.Store
}

// HandleGetUser handles GET /admin/users/{id}.
func (h *AdminUsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "user id must be numeric")
		return
	}

	user, err := h.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user not found")
		default:
			log.Error("failed to look up user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to look up user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
