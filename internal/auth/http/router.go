package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/soularenas/soularenas-api/internal/auth/rbac"
	"github.com/soularenas/soularenas-api/internal/auth/service"
	"github.com/soularenas/soularenas-api/internal/auth/store"
	"github.com/soularenas/soularenas-api/pkg/httpx"
	"github.com/soularenas/soularenas-api/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	Authorizer  *service.Authorizer
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /auth/refresh", http.HandlerFunc(h.HandleRefresh))

	me := &MeHandler{}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(me,
			AuthnMiddleware(r.Authorizer),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminUsersHandler{Store: r.store}

	// Admin lookups are gated by the SUPER_ADMIN policy.
	secured := httpx.Chain(http.HandlerFunc(h.HandleGetUser),
		AuthnMiddleware(r.Authorizer),
		RequirePermission(rbac.PermissionSuperAdmin),
	)

	r.Mux.Handle("GET /admin/users/{id}", secured)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /health", HealthHandler(r.startTime, r.buildVersion, r.store))
}
