// Package auth wires the authentication bounded context.
package auth

import (
	"clientdesk_backend/internal/auth/handler"
	"clientdesk_backend/internal/auth/repository"
	"clientdesk_backend/internal/auth/service"
	apphttp "clientdesk_backend/internal/http"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/config"
	"clientdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, clk clock.Clock, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, clk)

	return &Module{handler: handler.New(svc, validate)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes. Login and register live outside the
// authenticated group behind the stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/auth")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	protected := ctx.Protected.Group("/auth")
	m.handler.RegisterProtectedRoutes(protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
