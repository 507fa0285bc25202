// Command api runs the HTTP server: migrations, module wiring, and graceful
// shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clientdesk_backend/internal/adapters"
	"clientdesk_backend/internal/auth"
	"clientdesk_backend/internal/catalog"
	"clientdesk_backend/internal/engagements"
	engports "clientdesk_backend/internal/engagements/ports"
	apphttp "clientdesk_backend/internal/http"
	"clientdesk_backend/internal/http/router"
	"clientdesk_backend/internal/notification"
	"clientdesk_backend/internal/opportunities"
	"clientdesk_backend/internal/scheduler"
	"clientdesk_backend/migrations"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/config"
	"clientdesk_backend/platform/db"
	platformevents "clientdesk_backend/platform/events"
	"clientdesk_backend/platform/logger"
	"clientdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgxPool, err := connectWithRetry(ctx, log, cfg)
	if err != nil {
		log.Error("database unavailable", "error", err.Error())
		os.Exit(1)
	}
	defer pgxPool.Close()

	if err := db.RunMigrations(ctx, cfg, migrations.FS, "."); err != nil {
		log.Error("migrations failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Redis backs the catalog cache and the task scheduler; both degrade to
	// disabled when REDIS_URL is unset.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err.Error())
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	var reminders engports.ReminderScheduler
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg.RedisURL, cfg.AsynqQueueName)
		if err != nil {
			log.Error("scheduler client not created", "error", err.Error())
			os.Exit(1)
		}
		defer client.Close()
		reminders = client
	}

	bus := platformevents.NewInMemoryBus(log)
	clk := clock.System{}
	validate := validator.New()

	catalogModule := catalog.NewModule(pgxPool, rdb, cfg.CatalogCacheTTL)

	engagementsModule := engagements.NewModule(pgxPool, engagements.Deps{
		Templates: adapters.NewServiceTemplateAdapter(catalogModule.Service()),
		Scheduler: reminders,
		Bus:       bus,
		Clock:     clk,
		Logger:    log,
		Validator: validate,
		Region:    cfg.DefaultPhoneRegion,
	})

	opportunitiesModule := opportunities.NewModule(pgxPool, opportunities.Deps{
		Stages:    adapters.NewStageCatalogAdapter(catalogModule.Service()),
		Converter: adapters.NewWinConverterAdapter(engagementsModule.Service()),
		Bus:       bus,
		Clock:     clk,
		Logger:    log,
		Validator: validate,
		Region:    cfg.DefaultPhoneRegion,
	})

	notificationModule := notification.NewModule(pgxPool, bus, cfg, clk, log)
	authModule := auth.NewModule(pgxPool, cfg, clk, validate)

	if cfg.CatalogSeedPath != "" {
		if err := catalogModule.Seeder().SeedFromFile(ctx, cfg.CatalogSeedPath); err != nil {
			log.Error("catalog seed failed", "error", err.Error())
			os.Exit(1)
		}
		log.Info("catalog seeded", "path", cfg.CatalogSeedPath)
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pgxPool),
		EventBus: bus,
		Modules: []apphttp.Module{
			authModule,
			catalogModule,
			opportunitiesModule,
			engagementsModule,
			notificationModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", "error", err.Error())
	}
}

// connectWithRetry retries the database connection a few times before giving
// up, so a container scheduler can start services in any order.
func connectWithRetry(ctx context.Context, log *logger.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err := db.NewPool(ctx, cfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		log.Warn("database not ready", "attempt", attempt, "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, lastErr
}
