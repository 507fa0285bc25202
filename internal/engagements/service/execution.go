package service

import (
	"context"
	"time"

	"clientdesk_backend/internal/engagements/domain"
	"clientdesk_backend/internal/events"
	"clientdesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CloseCycleResult pairs the updated aggregate with the rollover outcome.
type CloseCycleResult struct {
	Engagement domain.Engagement
	Closed     domain.Cycle
	Opened     domain.Cycle
}

// CloseCycle rolls the current open cycle over to the next calendar month.
// The head checklist must be fully complete (vacuously so when empty); the
// new cycle's checklist is cloned from the current default template.
func (s *Service) CloseCycle(ctx context.Context, id uuid.UUID) (CloseCycleResult, error) {
	eng, err := s.repo.Load(ctx, id)
	if err != nil {
		return CloseCycleResult{}, mapRepoErr(err, "engagements.CloseCycle")
	}

	now := s.clock.Now()
	rolled, err := eng.CloseCycle(now)
	if err != nil {
		return CloseCycleResult{}, err
	}
	if err := s.repo.Save(ctx, &eng); err != nil {
		return CloseCycleResult{}, mapRepoErr(err, "engagements.CloseCycle")
	}

	s.bus.Publish(ctx, events.CycleClosed{
		BaseEvent:     events.BaseEventAt(now),
		EngagementID:  eng.ID,
		ClosedCycleID: rolled.Closed.ID,
		OpenedCycleID: rolled.Opened.ID,
		OpenedPeriod:  rolled.Opened.PeriodLabel,
		BillingDay:    eng.Recurring.BillingDay,
	})
	s.scheduleNextBilling(ctx, &eng, now)

	return CloseCycleResult{Engagement: eng, Closed: rolled.Closed, Opened: rolled.Opened}, nil
}

// UpdateRecurringSettings replaces the recurring configuration. Existing
// cycles keep their checklists; only future cycles see the new template.
func (s *Service) UpdateRecurringSettings(ctx context.Context, id uuid.UUID, settings domain.RecurringSettings) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.UpdateRecurringSettings", func(eng *domain.Engagement) error {
		return eng.UpdateRecurringSettings(settings, s.clock.Now())
	})
}

// Checklist operations

func (s *Service) AddOnboardingItem(ctx context.Context, id uuid.UUID, text string) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.AddOnboardingItem", func(eng *domain.Engagement) error {
		_, err := eng.AddOnboardingItem(sanitize.Text(text), s.clock.Now())
		return err
	})
}

func (s *Service) ToggleOnboardingItem(ctx context.Context, id, itemID uuid.UUID, done bool) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.ToggleOnboardingItem", func(eng *domain.Engagement) error {
		return eng.ToggleOnboardingItem(itemID, done, s.clock.Now())
	})
}

func (s *Service) RemoveOnboardingItem(ctx context.Context, id, itemID uuid.UUID) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.RemoveOnboardingItem", func(eng *domain.Engagement) error {
		return eng.RemoveOnboardingItem(itemID, s.clock.Now())
	})
}

func (s *Service) ToggleCycleItem(ctx context.Context, id, itemID uuid.UUID, done bool) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.ToggleCycleItem", func(eng *domain.Engagement) error {
		return eng.ToggleCycleItem(itemID, done, s.clock.Now())
	})
}

func (s *Service) AddProjectItem(ctx context.Context, id, projectID uuid.UUID, text string) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.AddProjectItem", func(eng *domain.Engagement) error {
		_, err := eng.AddProjectItem(projectID, sanitize.Text(text), s.clock.Now())
		return err
	})
}

func (s *Service) ToggleProjectItem(ctx context.Context, id, projectID, itemID uuid.UUID, done bool) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.ToggleProjectItem", func(eng *domain.Engagement) error {
		return eng.ToggleProjectItem(projectID, itemID, done, s.clock.Now())
	})
}

// Deliverable operations. The container id addresses either a cycle or a
// project; a deliverable lives in exactly one.

func (s *Service) AddDeliverable(ctx context.Context, id, containerID uuid.UUID, name, category string, goal int) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.AddDeliverable", func(eng *domain.Engagement) error {
		_, err := eng.AddDeliverableTo(containerID, sanitize.Text(name), sanitize.Text(category), goal, s.clock.Now())
		return err
	})
}

func (s *Service) IncrementDeliverable(ctx context.Context, id, containerID, deliverableID uuid.UUID, delta int) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.IncrementDeliverable", func(eng *domain.Engagement) error {
		_, err := eng.IncrementDeliverableIn(containerID, deliverableID, delta, s.clock.Now())
		return err
	})
}

func (s *Service) RemoveDeliverable(ctx context.Context, id, containerID, deliverableID uuid.UUID) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.RemoveDeliverable", func(eng *domain.Engagement) error {
		return eng.RemoveDeliverableFrom(containerID, deliverableID, s.clock.Now())
	})
}

// Project operations

func (s *Service) AddProject(ctx context.Context, id uuid.UUID, title string, value int64, dueAt *time.Time) (domain.Engagement, error) {
	var added domain.Project
	eng, err := s.mutate(ctx, id, "engagements.AddProject", func(eng *domain.Engagement) error {
		p, err := eng.AddProject(sanitize.Text(title), value, dueAt, s.clock.Now())
		if err != nil {
			return err
		}
		added = p
		return nil
	})
	if err != nil {
		return domain.Engagement{}, err
	}

	s.bus.Publish(ctx, events.ProjectAdded{
		BaseEvent:    events.BaseEventAt(s.clock.Now()),
		EngagementID: eng.ID,
		ProjectID:    added.ID,
		Title:        added.Title,
	})
	return eng, nil
}

func (s *Service) SetProjectStatus(ctx context.Context, id, projectID uuid.UUID, status domain.ProjectStatus) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.SetProjectStatus", func(eng *domain.Engagement) error {
		_, err := eng.SetProjectStatus(projectID, status, s.clock.Now())
		return err
	})
}

func (s *Service) MarkProjectBilled(ctx context.Context, id, projectID uuid.UUID) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.MarkProjectBilled", func(eng *domain.Engagement) error {
		_, err := eng.MarkProjectBilled(projectID, s.clock.Now())
		return err
	})
}

// Commercial operations

func (s *Service) Renegotiate(ctx context.Context, id uuid.UUID, value int64, startAt time.Time, endAt *time.Time, note string) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.Renegotiate", func(eng *domain.Engagement) error {
		eng.Renegotiate(value, startAt, endAt, sanitize.Text(note), s.clock.Now())
		return nil
	})
}

func (s *Service) RecordTransaction(ctx context.Context, id uuid.UUID, amount int64, note string) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.RecordTransaction", func(eng *domain.Engagement) error {
		eng.RecordTransaction(amount, sanitize.Text(note), s.clock.Now())
		return nil
	})
}

// FinancialsInput patches the acquisition-cost and lifetime-value fields.
type FinancialsInput struct {
	CAC        *int64
	LTVManual  *int64
	LTVDerived *bool
}

func (s *Service) SetFinancials(ctx context.Context, id uuid.UUID, in FinancialsInput) (domain.Engagement, error) {
	return s.mutate(ctx, id, "engagements.SetFinancials", func(eng *domain.Engagement) error {
		if in.CAC != nil {
			eng.CAC = *in.CAC
		}
		if in.LTVManual != nil {
			eng.LTVManual = *in.LTVManual
		}
		if in.LTVDerived != nil {
			eng.LTVDerived = *in.LTVDerived
		}
		eng.UpdatedAt = s.clock.Now()
		return nil
	})
}
