package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clientdesk_backend/internal/engagements/domain"
	"clientdesk_backend/internal/engagements/repository"
	"clientdesk_backend/internal/events"

	"github.com/google/uuid"
)

// ConversionInput is the opportunity data handed over when a won prospect
// becomes client work.
type ConversionInput struct {
	OpportunityID uuid.UUID
	// ClientID is the engagement the opportunity already references, if any.
	ClientID      *uuid.UUID
	Title         string
	Value         int64
	TargetCloseAt *time.Time
	Contact       domain.Contact
	ServiceTypeID *uuid.UUID
}

// ConversionOutcome reports what the conversion did.
type ConversionOutcome struct {
	EngagementID uuid.UUID
	// Created is true when a new engagement was created; false when a project
	// was appended to an existing one or a prior conversion was found.
	Created bool
	// Warning is non-empty when the conversion degraded but still completed.
	Warning string
}

// ConvertWonOpportunity is the engagements half of win automation.
//
// With a resolved client the opportunity becomes a new project on that
// engagement. Without one, a new engagement is created directly active with
// an open cycle and the contract pre-filled from the opportunity. The source
// opportunity id recorded on created engagements makes retries idempotent: a
// repeated conversion finds the earlier result instead of creating a second
// engagement. A dangling service reference degrades the template to empty
// rather than failing.
func (s *Service) ConvertWonOpportunity(ctx context.Context, in ConversionInput) (ConversionOutcome, error) {
	now := s.clock.Now()

	if in.ClientID != nil && *in.ClientID != uuid.Nil {
		outcome, err := s.convertToProject(ctx, in, now)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return outcome, err
		}
		// The client reference dangles. An earlier repair attempt may already
		// have created an engagement for this opportunity; converge on it
		// instead of creating a second one.
		if existing, err := s.repo.FindBySourceOpportunity(ctx, in.OpportunityID); err == nil {
			return ConversionOutcome{
				EngagementID: existing.ID,
				Created:      false,
				Warning:      fmt.Sprintf("linked engagement %s not found; relinked to engagement %s from an earlier conversion", *in.ClientID, existing.ID),
			}, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return ConversionOutcome{}, err
		}
		outcome, err = s.convertToEngagement(ctx, in, now)
		if err == nil && outcome.Warning == "" {
			outcome.Warning = fmt.Sprintf("linked engagement %s not found; a new engagement was created", *in.ClientID)
		}
		return outcome, err
	}

	// Idempotency guard: a prior conversion of this opportunity already
	// produced an engagement.
	if existing, err := s.repo.FindBySourceOpportunity(ctx, in.OpportunityID); err == nil {
		return ConversionOutcome{EngagementID: existing.ID, Created: false}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return ConversionOutcome{}, err
	}

	return s.convertToEngagement(ctx, in, now)
}

// convertToProject appends the won opportunity as a project on the engagement
// the opportunity references.
func (s *Service) convertToProject(ctx context.Context, in ConversionInput, now time.Time) (ConversionOutcome, error) {
	eng, err := s.repo.Load(ctx, *in.ClientID)
	if err != nil {
		return ConversionOutcome{}, err
	}

	// A won deal for this opportunity may already be on the books from an
	// earlier attempt; appending it twice would double the work.
	marker := projectMarker(in.OpportunityID)
	for _, h := range eng.History {
		if h.Message == marker {
			return ConversionOutcome{EngagementID: eng.ID, Created: false}, nil
		}
	}

	p, err := eng.AddProject(in.Title, in.Value, in.TargetCloseAt, now)
	if err != nil {
		return ConversionOutcome{}, err
	}
	eng.AppendHistory(marker, now)

	if err := s.repo.Save(ctx, &eng); err != nil {
		return ConversionOutcome{}, err
	}

	s.bus.Publish(ctx, events.ProjectAdded{
		BaseEvent:    events.BaseEventAt(now),
		EngagementID: eng.ID,
		ProjectID:    p.ID,
		Title:        p.Title,
	})
	return ConversionOutcome{EngagementID: eng.ID, Created: false}, nil
}

// convertToEngagement creates a new active engagement for a won opportunity
// with no existing client.
func (s *Service) convertToEngagement(ctx context.Context, in ConversionInput, now time.Time) (ConversionOutcome, error) {
	seed := domain.ConversionSeed{
		OpportunityID: in.OpportunityID,
		Title:         in.Title,
		Value:         in.Value,
		TargetCloseAt: in.TargetCloseAt,
		Contact:       in.Contact,
	}

	var warning string
	if in.ServiceTypeID != nil && s.templates != nil {
		tpl, err := s.templates.ServiceTemplate(ctx, *in.ServiceTypeID)
		if err != nil {
			warning = fmt.Sprintf("service type %s not found; engagement created with an empty checklist template", *in.ServiceTypeID)
		} else {
			seed.Relationship = domain.RelationshipType(tpl.Relationship)
			seed.ChecklistTemplate = tpl.DefaultChecklist
		}
	}

	eng := domain.NewFromWonOpportunity(seed, now)
	if err := s.repo.Create(ctx, eng); err != nil {
		return ConversionOutcome{}, err
	}

	s.bus.Publish(ctx, events.EngagementCreated{
		BaseEvent:           events.BaseEventAt(now),
		EngagementID:        eng.ID,
		Name:                eng.Name,
		SourceOpportunityID: eng.SourceOpportunityID,
	})
	s.scheduleNextBilling(ctx, eng, now)

	return ConversionOutcome{EngagementID: eng.ID, Created: true, Warning: warning}, nil
}

// projectMarker is the history message that ties a converted project back to
// its opportunity, doubling as the reconversion idempotency key.
func projectMarker(opportunityID uuid.UUID) string {
	return fmt.Sprintf("Project converted from won opportunity %s", opportunityID)
}
