// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"clientdesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent = events.NewBaseEvent
	BaseEventAt  = events.BaseEventAt
)

// =============================================================================
// Opportunity Domain Events
// =============================================================================

// OpportunityCreated is published when a new opportunity enters the pipeline.
type OpportunityCreated struct {
	BaseEvent
	OpportunityID uuid.UUID `json:"opportunityId"`
	Title         string    `json:"title"`
	StageKey      string    `json:"stageKey"`
}

func (e OpportunityCreated) EventName() string { return "opportunities.created" }

// OpportunityStageChanged is published when an opportunity moves between
// pipeline stages.
type OpportunityStageChanged struct {
	BaseEvent
	OpportunityID uuid.UUID `json:"opportunityId"`
	FromStage     string    `json:"fromStage"`
	ToStage       string    `json:"toStage"`
}

func (e OpportunityStageChanged) EventName() string { return "opportunities.stage.changed" }

// OpportunityWon is published when an opportunity reaches the terminal won
// stage. EngagementID is the engagement created or updated by win automation;
// it is uuid.Nil when automation failed entirely.
type OpportunityWon struct {
	BaseEvent
	OpportunityID     uuid.UUID `json:"opportunityId"`
	EngagementID      uuid.UUID `json:"engagementId"`
	EngagementCreated bool      `json:"engagementCreated"`
	Value             int64     `json:"value"`
}

func (e OpportunityWon) EventName() string { return "opportunities.won" }

// AutomationDegraded is published when win automation could not fully
// populate an engagement. The stage transition itself has committed.
type AutomationDegraded struct {
	BaseEvent
	OpportunityID uuid.UUID `json:"opportunityId"`
	Reason        string    `json:"reason"`
}

func (e AutomationDegraded) EventName() string { return "opportunities.automation.degraded" }

// =============================================================================
// Engagement Domain Events
// =============================================================================

// EngagementCreated is published when a new engagement record is created,
// whether by win automation or manually.
type EngagementCreated struct {
	BaseEvent
	EngagementID        uuid.UUID  `json:"engagementId"`
	Name                string     `json:"name"`
	SourceOpportunityID *uuid.UUID `json:"sourceOpportunityId,omitempty"`
}

func (e EngagementCreated) EventName() string { return "engagements.created" }

// OnboardingCompleted is published when an engagement moves from onboarding
// to active. Forced is true when pending checklist items were overridden.
type OnboardingCompleted struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	Forced       bool      `json:"forced"`
}

func (e OnboardingCompleted) EventName() string { return "engagements.onboarding.completed" }

// EngagementTerminated is published when an engagement is terminated.
type EngagementTerminated struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	Name         string    `json:"name"`
	Reason       string    `json:"reason"`
}

func (e EngagementTerminated) EventName() string { return "engagements.terminated" }

// EngagementReactivated is published when a terminated engagement returns
// to active.
type EngagementReactivated struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
}

func (e EngagementReactivated) EventName() string { return "engagements.reactivated" }

// CycleClosed is published when a recurring execution cycle is rolled over.
type CycleClosed struct {
	BaseEvent
	EngagementID    uuid.UUID `json:"engagementId"`
	ClosedCycleID   uuid.UUID `json:"closedCycleId"`
	OpenedCycleID   uuid.UUID `json:"openedCycleId"`
	OpenedPeriod    string    `json:"openedPeriod"`
	BillingDay      int       `json:"billingDay"`
}

func (e CycleClosed) EventName() string { return "engagements.cycle.closed" }

// ProjectAdded is published when a project is appended to an engagement,
// including the reconversion fast path from win automation.
type ProjectAdded struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	ProjectID    uuid.UUID `json:"projectId"`
	Title        string    `json:"title"`
}

func (e ProjectAdded) EventName() string { return "engagements.project.added" }
