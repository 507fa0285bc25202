// Package engagements wires the client lifecycle bounded context.
package engagements

import (
	"clientdesk_backend/internal/engagements/handler"
	"clientdesk_backend/internal/engagements/ports"
	"clientdesk_backend/internal/engagements/repository"
	"clientdesk_backend/internal/engagements/service"
	"clientdesk_backend/internal/events"
	apphttp "clientdesk_backend/internal/http"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"
	"clientdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the engagements bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Deps carries the cross-context ports the module needs.
type Deps struct {
	Templates ports.ServiceTemplateReader
	Scheduler ports.ReminderScheduler
	Bus       events.Bus
	Clock     clock.Clock
	Logger    *logger.Logger
	Validator *validator.Validator
	Region    string
}

// NewModule creates and initializes the engagements module.
func NewModule(pool *pgxpool.Pool, deps Deps) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, deps.Templates, deps.Scheduler, deps.Bus, deps.Clock, deps.Logger, deps.Region)

	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "engagements"
}

// Service returns the engagements service for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts engagement routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/engagements")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
