package domain

import (
	"fmt"
	"strings"
	"time"

	"clientdesk_backend/platform/apperr"
)

// CompleteOnboarding moves the engagement from onboarding to active. It fails
// while any checklist item is unchecked unless force is set; a forced
// completion is logged as an override in the history.
func (e *Engagement) CompleteOnboarding(relationship RelationshipType, force bool, at time.Time) error {
	if e.LifecycleStage != LifecycleOnboarding {
		return apperr.Validation("engagement is not in onboarding")
	}
	if relationship != RelationshipRecurring && relationship != RelationshipProject {
		return apperr.Validation("relationship type must be Recurring or Project")
	}

	if !ChecklistComplete(e.OnboardingChecklist) {
		if !force {
			return apperr.Validation("onboarding checklist has unchecked items").
				WithCode(apperr.CodeChecklistIncomplete)
		}
		e.AppendHistory("Onboarding completed with override: pending checklist items skipped", at)
	} else {
		e.AppendHistory("Onboarding completed", at)
	}

	e.LifecycleStage = LifecycleActive
	e.RelationshipType = relationship
	if relationship == RelationshipRecurring && len(e.Cycles) == 0 {
		e.Cycles = append(e.Cycles, NewCycle(PeriodLabel(at), e.Recurring.DefaultChecklist, at))
	}
	e.UpdatedAt = at
	return nil
}

// Terminate ends the engagement. A non-empty reason is required; the move is
// recorded as a Termination contract event and cycles, projects, and history
// are all preserved.
func (e *Engagement) Terminate(reason string, at time.Time) error {
	if e.LifecycleStage != LifecycleActive {
		return apperr.Validation("only active engagements can be terminated")
	}
	if strings.TrimSpace(reason) == "" {
		return apperr.Validation("termination reason is required")
	}

	e.LifecycleStage = LifecycleTerminated
	now := at
	e.Contract.EndAt = &now
	e.AppendContractEvent(ReasonTermination, e.Contract.Value, reason, at)
	e.AppendHistory(fmt.Sprintf("Engagement terminated: %s", reason), at)
	e.UpdatedAt = at
	return nil
}

// Reactivate returns a terminated engagement to active. Onboarding is not
// re-run and no checklist requirement applies.
func (e *Engagement) Reactivate(at time.Time) error {
	if e.LifecycleStage != LifecycleTerminated {
		return apperr.Validation("only terminated engagements can be reactivated")
	}

	e.LifecycleStage = LifecycleActive
	e.Contract.EndAt = nil
	e.AppendHistory("Engagement reactivated", at)
	e.UpdatedAt = at
	return nil
}

// ChangeRelationshipType is rejected once the engagement has left onboarding:
// switching the executor substructure mid-flight is undefined behavior.
func (e *Engagement) ChangeRelationshipType(relationship RelationshipType) error {
	if e.LifecycleStage != LifecycleOnboarding {
		return apperr.Validation("relationship type is fixed once the engagement leaves onboarding")
	}
	if relationship != RelationshipRecurring && relationship != RelationshipProject {
		return apperr.Validation("relationship type must be Recurring or Project")
	}
	e.RelationshipType = relationship
	return nil
}
