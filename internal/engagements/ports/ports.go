// Package ports defines the consumer-driven interfaces the engagements
// context needs from other contexts and from background infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceTemplate is what the conversion flow needs to know about an offered
// service: which execution mode it implies and the checklist seeded into the
// first cycle.
type ServiceTemplate struct {
	Name             string
	Relationship     string // "Recurring" or "Project"
	DefaultChecklist []string
}

// ServiceTemplateReader resolves a service type reference to its conversion
// defaults. A dangling reference returns an error; callers degrade rather
// than fail.
type ServiceTemplateReader interface {
	ServiceTemplate(ctx context.Context, id uuid.UUID) (ServiceTemplate, error)
}

// ReminderScheduler enqueues a billing reminder for an open cycle. Scheduling
// failures are logged, never surfaced to the caller.
type ReminderScheduler interface {
	ScheduleCycleBilling(ctx context.Context, engagementID, cycleID uuid.UUID, billAt time.Time) error
}
