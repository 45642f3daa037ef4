package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soularenas/soularenas-api/internal/auth/domain"
	"github.com/soularenas/soularenas-api/internal/auth/rbac"
	"github.com/soularenas/soularenas-api/internal/auth/service"
	"github.com/soularenas/soularenas-api/internal/auth/store/drivers/sqlite"
	"github.com/soularenas/soularenas-api/pkg/cryptox"
	"github.com/soularenas/soularenas-api/pkg/jwtx"
)

type testHarness struct {
	router *Router
	store  *sqlite.Store
	codec  *jwtx.Codec
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec("handler-test-secret")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter("test", st, logger)
	router.AuthService = service.NewAuthService(st, codec)
	router.Authorizer = service.NewAuthorizer(codec, st, rbac.NewResolver(rbac.DefaultTable()))
	router.ApplyRoutes()

	return &testHarness{router: router, store: st, codec: codec}
}

func (h *testHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func (h *testHarness) register(t *testing.T, email, password string) UserResponse {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Email: email, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[UserResponse](t, rec)
}

func (h *testHarness) login(t *testing.T, email, password string) LoginResponse {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[LoginResponse](t, rec)
}

func TestRegisterEndpoint(t *testing.T) {
	h := newTestHarness(t)

	t.Run("success", func(t *testing.T) {
		user := h.register(t, "Player@Example.com", "password123")
		require.Positive(t, user.ID)
		require.Equal(t, "player@example.com", user.Email)
		require.NotEmpty(t, user.Username)
		require.NotNil(t, user.Roles)
		require.False(t, user.IsEmailVerified)
	})

	t.Run("duplicate email", func(t *testing.T) {
		h.register(t, "taken@example.com", "password123")
		rec := h.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Email: "taken@example.com", Password: "password123"})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Email: "not-an-email", Password: "password123"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Email: "short@example.com", Password: "short"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	h := newTestHarness(t)
	h.register(t, "login@example.com", "password123")

	t.Run("success", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "login@example.com", Password: "password123"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		resp := decodeBody[LoginResponse](t, rec)
		require.Equal(t, "login@example.com", resp.User.Email)
		require.Equal(t, "Bearer", resp.TokenType)
		require.NotEmpty(t, resp.AccessToken)
		require.NotEmpty(t, resp.RefreshToken)

		claims, err := h.codec.Validate(resp.AccessToken)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		require.Equal(t, resp.User.ID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "login@example.com", Password: "wrong-password"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ghost@example.com", Password: "password123"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		resp := decodeBody[map[string]string](t, rec)
		require.Equal(t, "invalid email or password", resp["error"])
	})
}

func TestRefreshEndpoint(t *testing.T) {
	h := newTestHarness(t)
	h.register(t, "refresh@example.com", "password123")
	session := h.login(t, "refresh@example.com", "password123")

	t.Run("rotation and reuse rejection", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: session.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		rotated := decodeBody[domain.TokenPair](t, rec)
		require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
		require.NotEmpty(t, rotated.AccessToken)

		// The old token is spent.
		rec = h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: session.RefreshToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		// The new one works.
		rec = h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: rotated.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: "no-dot-here"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: "424242.c2VjcmV0"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh", "", RefreshRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	h := newTestHarness(t)
	h.register(t, "me@example.com", "password123")
	session := h.login(t, "me@example.com", "password123")

	t.Run("success", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/me", session.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		me := decodeBody[MeResponse](t, rec)
		require.Equal(t, "me@example.com", me.Email)
		require.NotNil(t, me.Permissions)
		require.Empty(t, me.Permissions)
	})

	t.Run("no token", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/me", "not.a.jwt", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminEndpoint(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	plain := h.register(t, "plain@example.com", "password123")
	plainSession := h.login(t, "plain@example.com", "password123")

	hash, err := cryptox.HashPassword("password123")
	require.NoError(t, err)
	now := time.Now().UTC()
	_, err = h.store.Users().CreateUser(ctx, domain.User{
		Email:        "admin@example.com",
		Username:     "GrandPhoenix#900",
		PasswordHash: hash,
		Roles:        []string{rbac.RoleSuperAdmin},
		IsActive:     true,
		CreatedAt:    now,
		LastModified: now,
	})
	require.NoError(t, err)
	adminSession := h.login(t, "admin@example.com", "password123")

	t.Run("admin can look up users", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/admin/users/"+strconv.FormatInt(plain.ID, 10), adminSession.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[UserResponse](t, rec)
		require.Equal(t, plain.Email, got.Email)
	})

	t.Run("missing permission", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/admin/users/1", plainSession.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/admin/users/1", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/admin/users/999999", adminSession.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/admin/users/abc", adminSession.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHarness(t)

	rec := h.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[HealthResponse](t, rec)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "test", resp.Version)
}
