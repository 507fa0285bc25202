package scheduler

import (
	"context"
	"errors"
	"time"

	"clientdesk_backend/internal/engagements/ports"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Client enqueues delayed tasks. It implements the engagements
// ReminderScheduler port.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient connects an asynq client to the given redis URI.
func NewClient(redisURL, queue string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt), queue: queue}, nil
}

// ScheduleCycleBilling enqueues a billing reminder to fire at billAt. A
// duplicate enqueue for the same cycle is deduplicated by task id, so cycle
// rollover retries never double the reminder.
func (c *Client) ScheduleCycleBilling(ctx context.Context, engagementID, cycleID uuid.UUID, billAt time.Time) error {
	task, err := NewCycleBillingTask(CycleBillingPayload{
		EngagementID: engagementID,
		CycleID:      cycleID,
		BillAt:       billAt,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID("cycle-billing:"+cycleID.String()),
		asynq.ProcessAt(billAt),
		asynq.MaxRetry(3),
		asynq.Retention(72*time.Hour),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// Close releases the underlying redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

var _ ports.ReminderScheduler = (*Client)(nil)
