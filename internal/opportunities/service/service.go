// Package service implements the opportunities use cases: pipeline CRUD,
// stage transitions, and the win-automation hook.
package service

import (
	"context"
	"errors"

	"clientdesk_backend/internal/events"
	"clientdesk_backend/internal/opportunities/domain"
	"clientdesk_backend/internal/opportunities/ports"
	"clientdesk_backend/internal/opportunities/repository"
	"clientdesk_backend/platform/apperr"
	"clientdesk_backend/platform/clock"
	"clientdesk_backend/platform/logger"
	"clientdesk_backend/platform/phone"
	"clientdesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Load(ctx context.Context, id uuid.UUID) (domain.Opportunity, error)
	Create(ctx context.Context, opp *domain.Opportunity) error
	Save(ctx context.Context, opp *domain.Opportunity) error
	List(ctx context.Context) ([]domain.Opportunity, error)
}

// Service orchestrates opportunity use cases. Stage resolution is delegated
// to the catalog; win automation is delegated through the WinConverter port.
type Service struct {
	repo      Repository
	stages    ports.StageCatalogReader
	converter ports.WinConverter
	bus       events.Bus
	clock     clock.Clock
	log       *logger.Logger
	region    string // default phone region for E.164 normalization
}

func New(repo Repository, stages ports.StageCatalogReader, converter ports.WinConverter, bus events.Bus, clk clock.Clock, log *logger.Logger, region string) *Service {
	return &Service{
		repo:      repo,
		stages:    stages,
		converter: converter,
		bus:       bus,
		clock:     clk,
		log:       log,
		region:    region,
	}
}

// Create adds a new opportunity to the pipeline. The input aggregate carries
// the descriptive fields; identity, logs, and timestamps are assigned here.
// Without an explicit stage it starts in the catalog's first stage with
// probability 0.
func (s *Service) Create(ctx context.Context, in domain.Opportunity) (domain.Opportunity, error) {
	catalog, err := s.stages.StageCatalog(ctx)
	if err != nil {
		return domain.Opportunity{}, apperr.Wrap(apperr.KindInternal, "failed to load stage catalog", err).WithOp("opportunities.Create")
	}

	stageKey := in.StageKey
	if stageKey == "" {
		first, ok := catalog.First()
		if !ok {
			return domain.Opportunity{}, apperr.Internal("stage catalog is empty").WithOp("opportunities.Create")
		}
		stageKey = first.Key
	} else if !catalog.Contains(stageKey) {
		return domain.Opportunity{}, apperr.Validation("initial stage is not in the pipeline catalog").
			WithCode(apperr.CodeInvalidTarget).
			WithDetails(map[string]string{"stage": stageKey})
	}

	now := s.clock.Now()
	opp := domain.New(sanitize.Text(in.Title), in.Value, stageKey, now)
	if in.Priority != "" {
		opp.Priority = in.Priority
	}
	opp.Probability = in.Probability
	opp.TargetCloseAt = in.TargetCloseAt
	opp.ChannelID = in.ChannelID
	opp.ServiceTypeID = in.ServiceTypeID
	opp.Contact = domain.Contact{
		Name:   sanitize.Text(in.Contact.Name),
		Phone:  phone.NormalizeE164(in.Contact.Phone, s.region),
		Email:  sanitize.Text(in.Contact.Email),
		Social: sanitize.Text(in.Contact.Social),
	}

	if err := s.repo.Create(ctx, opp); err != nil {
		return domain.Opportunity{}, apperr.Wrap(apperr.KindInternal, "failed to create opportunity", err).WithOp("opportunities.Create")
	}

	s.bus.Publish(ctx, events.OpportunityCreated{
		BaseEvent:     events.BaseEventAt(now),
		OpportunityID: opp.ID,
		Title:         opp.Title,
		StageKey:      opp.StageKey,
	})

	return *opp, nil
}

// GetByID returns one opportunity.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Opportunity, error) {
	opp, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.GetByID")
	}
	return opp, nil
}

// List returns all opportunities, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Opportunity, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list opportunities", err).WithOp("opportunities.List")
	}
	return items, nil
}

// Update patches descriptive fields of an opportunity through the given
// mutator. Stage changes go through Transition, never through Update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, apply func(*domain.Opportunity)) (domain.Opportunity, error) {
	opp, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.Update")
	}

	apply(&opp)
	opp.Contact.Phone = phone.NormalizeE164(opp.Contact.Phone, s.region)
	opp.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, &opp); err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.Update")
	}
	return opp, nil
}

// AddComment appends a user note to the opportunity.
func (s *Service) AddComment(ctx context.Context, id, authorID uuid.UUID, text string) (domain.Opportunity, error) {
	opp, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.AddComment")
	}

	opp.AppendComment(authorID, sanitize.Text(text), s.clock.Now())
	if err := s.repo.Save(ctx, &opp); err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.AddComment")
	}
	return opp, nil
}

// Duplicate creates a fresh copy of the opportunity back at the first pipeline
// stage with empty history and comment logs.
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID) (domain.Opportunity, error) {
	opp, err := s.repo.Load(ctx, id)
	if err != nil {
		return domain.Opportunity{}, mapRepoErr(err, "opportunities.Duplicate")
	}

	catalog, err := s.stages.StageCatalog(ctx)
	if err != nil {
		return domain.Opportunity{}, apperr.Wrap(apperr.KindInternal, "failed to load stage catalog", err).WithOp("opportunities.Duplicate")
	}
	first, ok := catalog.First()
	if !ok {
		return domain.Opportunity{}, apperr.Internal("stage catalog is empty").WithOp("opportunities.Duplicate")
	}

	dup := opp.Duplicate(first.Key, s.clock.Now())
	if err := s.repo.Create(ctx, dup); err != nil {
		return domain.Opportunity{}, apperr.Wrap(apperr.KindInternal, "failed to create duplicate", err).WithOp("opportunities.Duplicate")
	}
	return *dup, nil
}

// TransitionResult reports the outcome of a stage transition. AutomationWarning
// carries a non-fatal win-automation degradation; the transition itself is
// already committed when it is set.
type TransitionResult struct {
	Opportunity       domain.Opportunity
	Changed           bool
	EngagementID      *uuid.UUID
	AutomationWarning string
}

// Transition moves an opportunity to a target stage. The target is resolved
// against the catalog before any mutation; resolving to the current stage is
// a recorded no-op. Reaching the won stage triggers win automation after the
// transition has committed, so a failed conversion can degrade the result but
// never roll the stage back.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target domain.TransitionTarget) (TransitionResult, error) {
	opp, err := s.repo.Load(ctx, id)
	if err != nil {
		return TransitionResult{}, mapRepoErr(err, "opportunities.Transition")
	}

	catalog, err := s.stages.StageCatalog(ctx)
	if err != nil {
		return TransitionResult{}, apperr.Wrap(apperr.KindInternal, "failed to load stage catalog", err).WithOp("opportunities.Transition")
	}

	resolved, err := catalog.Resolve(opp.StageKey, target)
	if err != nil {
		return TransitionResult{}, err
	}
	if resolved == opp.StageKey {
		return TransitionResult{Opportunity: opp, Changed: false}, nil
	}

	from := opp.StageKey
	wonKey := catalog.WonKey()
	becameWon := wonKey != "" && resolved == wonKey && from != wonKey

	now := s.clock.Now()
	opp.ApplyStage(resolved, now)
	if err := s.repo.Save(ctx, &opp); err != nil {
		return TransitionResult{}, mapRepoErr(err, "opportunities.Transition")
	}

	s.log.StageTransition("opportunity", opp.ID.String(), from, resolved)
	s.bus.Publish(ctx, events.OpportunityStageChanged{
		BaseEvent:     events.BaseEventAt(now),
		OpportunityID: opp.ID,
		FromStage:     from,
		ToStage:       resolved,
	})

	result := TransitionResult{Opportunity: opp, Changed: true}
	if becameWon {
		s.runWinAutomation(ctx, &opp, &result)
	}
	return result, nil
}

// runWinAutomation converts the won opportunity into engagement state. All
// failures here are non-fatal: the stage transition is committed and stays.
func (s *Service) runWinAutomation(ctx context.Context, opp *domain.Opportunity, result *TransitionResult) {
	now := s.clock.Now()

	conv, err := s.converter.ConvertWon(ctx, *opp)
	if err != nil {
		reason := "win automation failed: " + err.Error()
		s.log.AutomationDegraded(opp.ID.String(), reason)
		s.bus.Publish(ctx, events.AutomationDegraded{
			BaseEvent:     events.BaseEventAt(now),
			OpportunityID: opp.ID,
			Reason:        reason,
		})
		result.AutomationWarning = reason
		result.Opportunity = *opp
		return
	}

	if conv.Warning != "" {
		s.log.AutomationDegraded(opp.ID.String(), conv.Warning)
		s.bus.Publish(ctx, events.AutomationDegraded{
			BaseEvent:     events.BaseEventAt(now),
			OpportunityID: opp.ID,
			Reason:        conv.Warning,
		})
		result.AutomationWarning = conv.Warning
	}

	engagementID := conv.EngagementID
	result.EngagementID = &engagementID

	// Link the opportunity to its engagement whenever the reference is
	// missing or points elsewhere, which covers both the fresh conversion
	// and the repair of a dangling reference. A failure here is repairable:
	// the engagement already records the source opportunity id, so a repeated
	// won transition finds it instead of creating a second one.
	if opp.ClientID == nil || *opp.ClientID != engagementID {
		opp.LinkClient(engagementID, now)
		if err := s.repo.Save(ctx, opp); err != nil {
			reason := "engagement created but client link not saved: " + err.Error()
			s.log.AutomationDegraded(opp.ID.String(), reason)
			if result.AutomationWarning == "" {
				result.AutomationWarning = reason
			}
		}
	}
	result.Opportunity = *opp

	s.bus.Publish(ctx, events.OpportunityWon{
		BaseEvent:         events.BaseEventAt(now),
		OpportunityID:     opp.ID,
		EngagementID:      engagementID,
		EngagementCreated: conv.Created,
		Value:             opp.Value,
	})
}

func mapRepoErr(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("opportunity not found").WithOp(op)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Conflict("opportunity was modified concurrently").WithOp(op)
	default:
		return apperr.Wrap(apperr.KindInternal, "opportunity storage failure", err).WithOp(op)
	}
}
