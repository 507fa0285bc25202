package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"clientdesk_backend/internal/notification"
	"clientdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes scheduled tasks and turns them into notifications.
type Worker struct {
	server        *asynq.Server
	notifications *notification.Service
	log           *logger.Logger
}

// NewWorker builds the asynq server and its handler mux.
func NewWorker(redisURL, queue string, notifications *notification.Service, log *logger.Logger) (*Worker, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", "type", task.Type(), "error", err.Error())
		}),
	})

	return &Worker{server: server, notifications: notifications, log: log}, nil
}

// Run blocks processing tasks until Shutdown is called.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCycleBillingDue, w.handleCycleBillingDue)
	return w.server.Run(mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleCycleBillingDue(ctx context.Context, task *asynq.Task) error {
	var p CycleBillingPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", TaskCycleBillingDue, err)
	}

	w.log.Info("cycle billing due", "engagement_id", p.EngagementID.String(), "cycle_id", p.CycleID.String())
	return w.notifications.Notify(ctx, "cycle_billing_due",
		"Cycle billing due",
		fmt.Sprintf("Engagement %s has a cycle billing due today.", p.EngagementID),
		&p.EngagementID, true)
}
