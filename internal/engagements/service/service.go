// Package service implements the engagements use cases: the client lifecycle
// state machine, recurring cycle execution, projects, and win-automation
// conversion.
package service

import (
	"context"
	"errors"
	"time"

	"clientdesk_backend/internal/engagements/domain"
	"clientdesk_backend/internal/engagements/ports"
	"clientdesk_backend/internal/engagements/repository"
	"clientdesk_backend/internal/events"
	"clientdesk_backend/platform/apperr"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"
	"clientdesk_backend/platform/phone"
	"clientdesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Load(ctx context.Context, id uuid.UUID) (domain.Engagement, error)
	FindBySourceOpportunity(ctx context.Context, opportunityID uuid.UUID) (domain.Engagement, error)
	Create(ctx context.Context, eng *domain.Engagement) error
	Save(ctx context.Context, eng *domain.Engagement) error
	List(ctx context.Context) ([]domain.Engagement, error)
}

// Service orchestrates engagement use cases.
type Service struct {
	repo      Repository
	templates ports.ServiceTemplateReader
	scheduler ports.ReminderScheduler
	bus       events.Bus
	clock     clock.Clock
	log       *logger.Logger
	region    string
}

// New creates the engagements service. scheduler may be nil when background
// billing reminders are disabled.
func New(repo Repository, templates ports.ServiceTemplateReader, scheduler ports.ReminderScheduler, bus events.Bus, clk clock.Clock, log *logger.Logger, region string) *Service {
	return &Service{
		repo:      repo,
		templates: templates,
		scheduler: scheduler,
		bus:       bus,
		clock:     clk,
		log:       log,
		region:    region,
	}
}

// GetByID returns one engagement.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Engagement, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.GetByID")
	}
	return eng, nil
}

// List returns all engagements, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Engagement, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list engagements", err).WithOp("engagements.List")
	}
	return items, nil
}

// CreateOnboarding starts a manually entered engagement at the beginning of
// the onboarding flow, with the checklist seeded from the given template.
func (s *Service) CreateOnboarding(ctx context.Context, name string, contact domain.Contact, checklist []string) (domain.Engagement, error) {
	if sanitize.Text(name) == "" {
		return domain.Engagement{}, apperr.Validation("engagement name is required")
	}

	now := s.clock.Now()
	contact.Name = sanitize.Text(contact.Name)
	contact.Phone = phone.NormalizeE164(contact.Phone, s.region)
	eng := domain.NewOnboarding(sanitize.Text(name), contact, checklist, now)

	if err := s.repo.Create(ctx, eng); err != nil {
		return domain.Engagement{}, apperr.Wrap(apperr.KindInternal, "failed to create engagement", err).WithOp("engagements.CreateOnboarding")
	}

	s.bus.Publish(ctx, events.EngagementCreated{
		BaseEvent:    events.BaseEventAt(now),
		EngagementID: eng.ID,
		Name:         eng.Name,
	})
	return *eng, nil
}

// CompleteOnboarding moves an onboarding engagement to active. force skips
// the checklist-complete requirement and is recorded as an override.
func (s *Service) CompleteOnboarding(ctx context.Context, id uuid.UUID, relationship domain.RelationshipType, force bool) (domain.Engagement, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.CompleteOnboarding")
	}

	now := s.clock.Now()
	if err := eng.CompleteOnboarding(relationship, force, now); err != nil {
		return domain.Engagement{}, err
	}
	if err := s.repo.Save(ctx, &eng); err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.CompleteOnboarding")
	}

	s.log.StageTransition("engagement", eng.ID.String(), string(domain.LifecycleOnboarding), string(domain.LifecycleActive))
	s.bus.Publish(ctx, events.OnboardingCompleted{
		BaseEvent:    events.BaseEventAt(now),
		EngagementID: eng.ID,
		Forced:       force,
	})
	s.scheduleNextBilling(ctx, &eng, now)
	return eng, nil
}

// Terminate ends an active engagement. All execution history is preserved.
func (s *Service) Terminate(ctx context.Context, id uuid.UUID, reason string) (domain.Engagement, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.Terminate")
	}

	now := s.clock.Now()
	if err := eng.Terminate(sanitize.Text(reason), now); err != nil {
		return domain.Engagement{}, err
	}
	if err := s.repo.Save(ctx, &eng); err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.Terminate")
	}

	s.log.StageTransition("engagement", eng.ID.String(), string(domain.LifecycleActive), string(domain.LifecycleTerminated))
	s.bus.Publish(ctx, events.EngagementTerminated{
		BaseEvent:    events.BaseEventAt(now),
		EngagementID: eng.ID,
		Name:         eng.Name,
		Reason:       reason,
	})
	return eng, nil
}

// Reactivate returns a terminated engagement to active without re-running
// onboarding.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (domain.Engagement, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.Reactivate")
	}

	now := s.clock.Now()
	if err := eng.Reactivate(now); err != nil {
		return domain.Engagement{}, err
	}
	if err := s.repo.Save(ctx, &eng); err != nil {
		return domain.Engagement{}, mapRepoErr(err, "engagements.Reactivate")
	}

	s.log.StageTransition("engagement", eng.ID.String(), string(domain.LifecycleTerminated), string(domain.LifecycleActive))
	s.bus.Publish(ctx, events.EngagementReactivated{
		BaseEvent:    events.BaseEventAt(now),
		EngagementID: eng.ID,
	})
	return eng, nil
}

// SetRelationshipType switches the execution mode. Only legal during
// onboarding; the domain rejects it afterwards.
func (s *Service) SetRelationshipType(ctx context.Context, id uuid.UUID, relationship domain.RelationshipType) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.SetRelationshipType", func(eng *domain.Engagement) error {
		return eng.ChangeRelationshipType(relationship)
	})
}

// SetInternalStatus updates the qualitative health tag.
func (s *Service) SetInternalStatus(ctx context.Context, id uuid.UUID, status domain.InternalStatus) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.SetInternalStatus", func(eng *domain.Engagement) error {
		switch status {
		case domain.StatusCalm, domain.StatusDemanding, domain.StatusProblematic, domain.StatusFinancialRisk:
		default:
			return apperr.Validation("unknown internal status")
		}
		eng.InternalStatus = status
		eng.UpdatedAt = s.clock.Now()
		return nil
	})
}

// mutate is the shared load-apply-save skeleton for single-aggregate ops.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, op string, apply func(*domain.Engagement) error) (domain.Engagement, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Engagement{}, mapRepoErr(err, op)
	}
	if err := apply(&eng); err != nil {
		return domain.Engagement{}, err
	}
	if err := s.repo.Save(ctx, &eng); err != nil {
		return domain.Engagement{}, mapRepoErr(err, op)
	}
	return eng, nil
}

// scheduleNextBilling enqueues a billing reminder for the open cycle. Failures
// are logged and swallowed; reminders are a convenience, not an invariant.
func (s *Service) scheduleNextBilling(ctx context.Context, eng *domain.Engagement, now time.Time) {
	if s.scheduler == nil || eng.RelationshipType != domain.RelationshipRecurring {
		return
	}
	head := eng.CurrentCycle()
	if head == nil || head.Status != domain.CycleOpen {
		return
	}
	billAt := domain.NextBillingTime(now, eng.Recurring.BillingDay)
	if err := s.scheduler.ScheduleCycleBilling(ctx, eng.ID, head.ID, billAt); err != nil {
		s.log.Warn("billing reminder not scheduled",
			"engagement_id", eng.ID.String(),
			"cycle_id", head.ID.String(),
			"error", err.Error(),
		)
	}
}

func mapRepoErr(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("engagement not found").WithOp(op)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Conflict("engagement was modified concurrently").WithOp(op)
	default:
		return apperr.Wrap(apperr.KindInternal, "engagement storage failure", err).WithOp(op)
	}
}
