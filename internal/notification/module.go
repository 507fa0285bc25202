package notification

import (
	"clientdesk_backend/internal/events"
	apphttp "clientdesk_backend/internal/http"
	"clientdesk_backend/internal/notification/repository"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/config"
	"clientdesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates the notification module and subscribes it to the bus.
func NewModule(pool *pgxpool.Pool, bus events.Bus, emailCfg config.EmailConfig, clk clock.Clock, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := NewService(repo, NewEmailSender(emailCfg, log), clk, log)
	svc.SubscribeAll(bus)

	return &Module{
		handler: NewHandler(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Service returns the notification service for the background worker.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
