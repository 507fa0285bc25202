// Package scheduler provides delayed background tasks over asynq: cycle
// billing reminders enqueued when a cycle opens and consumed by the worker
// process.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskCycleBillingDue fires on an open cycle's billing day.
const TaskCycleBillingDue = "engagements:cycle_billing_due"

// CycleBillingPayload is the task body for TaskCycleBillingDue.
type CycleBillingPayload struct {
	EngagementID uuid.UUID `json:"engagementId"`
	CycleID      uuid.UUID `json:"cycleId"`
	BillAt       time.Time `json:"billAt"`
}

// NewCycleBillingTask builds the asynq task for a billing reminder.
func NewCycleBillingTask(p CycleBillingPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCycleBillingDue, payload), nil
}
