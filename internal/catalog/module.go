package catalog

import (
	"time"

	"clientdesk_backend/internal/catalog/cache"
	"clientdesk_backend/internal/catalog/handler"
	"clientdesk_backend/internal/catalog/repository"
	"clientdesk_backend/internal/catalog/service"
	apphttp "clientdesk_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	seeder  *Seeder
}

// NewModule creates and initializes the catalog module. rdb may be nil to
// disable the stage cache.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, cacheTTL time.Duration) *Module {
	repo := repository.New(pool)
	stages := cache.New(rdb, cacheTTL)
	svc := service.New(repo, stages)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		seeder:  NewSeeder(repo, stages),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the catalog service for cross-module adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Seeder returns the YAML catalog seeder.
func (m *Module) Seeder() *Seeder {
	return m.seeder
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/catalog")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
