package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/service"
	"github.com/soularenas/soularenas-api/pkg/httpx"
	"github.com/soularenas/soularenas-api/pkg/slogx"
)

// AuthHandler handles registration, login, and refresh rotation.
type AuthHandler struct {
	AuthService *service.AuthService
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse is the public shape of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	Roles           []string  `json:"roles"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

type LoginResponse struct {
	User UserResponse `json:"user"`
	domain.TokenPair
}

func toUserResponse(u domain.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		Roles:           roles,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

// HandleRegister handles POST /auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.AuthService.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, "email is already registered")
		default:
			log.Error("failed to register user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, pair, err := h.AuthService.Login(ctx, req.Email, req.Password, clientMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			log.Error("failed to log in user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		User:      toUserResponse(user),
		TokenPair: pair,
	})
}

// HandleRefresh handles POST /auth/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken, clientMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedToken):
			httpx.WriteError(w, http.StatusBadRequest, "refresh token is malformed")
		case errors.Is(err, service.ErrSessionNotFound),
			errors.Is(err, service.ErrSessionRevoked),
			errors.Is(err, service.ErrSessionExpired),
			errors.Is(err, service.ErrSecretMismatch):
			// One answer for every rejection so callers cannot probe
			// session state.
			httpx.WriteError(w, http.StatusUnauthorized, "refresh token is invalid")
		default:
			log.Error("failed to refresh tokens", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to refresh tokens")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
