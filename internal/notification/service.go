// Package notification turns domain events into an in-app inbox and optional
// email alerts. It is a pure consumer: nothing in the lifecycle engine waits
// on it.
package notification

import (
	"context"
	"errors"
	"fmt"

	"clientdesk_backend/internal/events"
	"clientdesk_backend/internal/notification/repository"
	"clientdesk_backend/platform/apperr"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, n *repository.Notification) error
	List(ctx context.Context, limit int) ([]repository.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	UnreadCount(ctx context.Context) (int64, error)
}

// Service records notifications and fans selected ones out to email.
type Service struct {
	repo  Repository
	email *EmailSender
	clock clock.Clock
	log   *logger.Logger
}

func NewService(repo Repository, email *EmailSender, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{repo: repo, email: email, clock: clk, log: log}
}

// Notify records an in-app notification. emailToo additionally sends it to
// the configured address.
func (s *Service) Notify(ctx context.Context, kind, title, body string, entityID *uuid.UUID, emailToo bool) error {
	n := &repository.Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		EntityID:  entityID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if emailToo && s.email != nil {
		s.email.Send(ctx, title, body)
	}
	return nil
}

// List returns recent notifications.
func (s *Service) List(ctx context.Context, limit int) ([]repository.Notification, error) {
	return s.repo.List(ctx, limit)
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	return err
}

// UnreadCount returns the unread badge count.
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

// SubscribeAll registers the service's event handlers on the bus. Handler
// errors stay on the bus side; publishers never see them.
func (s *Service) SubscribeAll(bus events.Bus) {
	bus.Subscribe(events.OpportunityWon{}.EventName(), events.HandlerFunc(s.onOpportunityWon))
	bus.Subscribe(events.AutomationDegraded{}.EventName(), events.HandlerFunc(s.onAutomationDegraded))
	bus.Subscribe(events.EngagementTerminated{}.EventName(), events.HandlerFunc(s.onEngagementTerminated))
	bus.Subscribe(events.CycleClosed{}.EventName(), events.HandlerFunc(s.onCycleClosed))
}

func (s *Service) onOpportunityWon(ctx context.Context, event events.Event) error {
	e, ok := event.(events.OpportunityWon)
	if !ok {
		return nil
	}
	verb := "extended"
	if e.EngagementCreated {
		verb = "created"
	}
	return s.Notify(ctx, "opportunity_won",
		"Opportunity won",
		fmt.Sprintf("Opportunity %s closed won; engagement %s %s.", e.OpportunityID, e.EngagementID, verb),
		&e.OpportunityID, true)
}

func (s *Service) onAutomationDegraded(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AutomationDegraded)
	if !ok {
		return nil
	}
	return s.Notify(ctx, "automation_degraded",
		"Win automation needs attention",
		fmt.Sprintf("Opportunity %s: %s", e.OpportunityID, e.Reason),
		&e.OpportunityID, true)
}

func (s *Service) onEngagementTerminated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.EngagementTerminated)
	if !ok {
		return nil
	}
	return s.Notify(ctx, "engagement_terminated",
		"Engagement terminated",
		fmt.Sprintf("%s was terminated: %s", e.Name, e.Reason),
		&e.EngagementID, false)
}

func (s *Service) onCycleClosed(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CycleClosed)
	if !ok {
		return nil
	}
	return s.Notify(ctx, "cycle_closed",
		"Cycle rolled over",
		fmt.Sprintf("Engagement %s opened cycle %s.", e.EngagementID, e.OpenedPeriod),
		&e.EngagementID, false)
}
