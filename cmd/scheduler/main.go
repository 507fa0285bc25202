// Command scheduler runs the background task worker: it consumes asynq tasks
// (cycle billing reminders) and records notifications.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clientdesk_backend/internal/events"
	"clientdesk_backend/internal/notification"
	"clientdesk_backend/internal/scheduler"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/config"
	"clientdesk_backend/platform/db"
	"clientdesk_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.RedisURL == "" {
		os.Stderr.WriteString("REDIS_URL is required for the scheduler\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("database unavailable", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	// The worker publishes nothing; the bus exists only because the
	// notification module subscribes at construction.
	bus := events.NewInMemoryBus(log)
	notifications := notification.NewModule(pool, bus, cfg, clock.System{}, log)

	worker, err := scheduler.NewWorker(cfg.RedisURL, cfg.AsynqQueueName, notifications.Service(), log)
	if err != nil {
		log.Error("worker not created", "error", err.Error())
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down worker")
		worker.Shutdown()
	}()

	log.Info("worker started", "queue", cfg.AsynqQueueName)
	if err := worker.Run(); err != nil {
		log.Error("worker stopped", "error", err.Error())
		os.Exit(1)
	}
}
