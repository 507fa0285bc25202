// Package opportunities wires the pipeline bounded context.
package opportunities

import (
	"clientdesk_backend/internal/events"
	apphttp "clientdesk_backend/internal/http"
	"clientdesk_backend/internal/opportunities/handler"
	"clientdesk_backend/internal/opportunities/ports"
	"clientdesk_backend/internal/opportunities/repository"
	"clientdesk_backend/internal/opportunities/service"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"
	"clientdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the opportunities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Deps carries the cross-context ports the module needs. Adapters in
// internal/adapters provide the implementations.
type Deps struct {
	Stages    ports.StageCatalogReader
	Converter ports.WinConverter
	Bus       events.Bus
	Clock     clock.Clock
	Logger    *logger.Logger
	Validator *validator.Validator
	Region    string
}

// NewModule creates and initializes the opportunities module.
func NewModule(pool *pgxpool.Pool, deps Deps) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, deps.Stages, deps.Converter, deps.Bus, deps.Clock, deps.Logger, deps.Region)

	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// Service returns the opportunities service for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts opportunity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/opportunities")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
