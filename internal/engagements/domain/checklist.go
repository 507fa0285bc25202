package domain

import (
	"strings"
	"time"

	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// AddOnboardingItem appends an item to the onboarding checklist. Only
// meaningful while the engagement is onboarding.
func (e *Engagement) AddOnboardingItem(text string, at time.Time) (ChecklistItem, error) {
	if e.LifecycleStage != LifecycleOnboarding {
		return ChecklistItem{}, apperr.Validation("engagement is not in onboarding")
	}
	if strings.TrimSpace(text) == "" {
		return ChecklistItem{}, apperr.Validation("checklist item text is required")
	}
	item := ChecklistItem{ID: uuid.New(), Text: text}
	e.OnboardingChecklist = append(e.OnboardingChecklist, item)
	e.UpdatedAt = at
	return item, nil
}

// ToggleOnboardingItem flips an onboarding checklist item's done flag.
func (e *Engagement) ToggleOnboardingItem(itemID uuid.UUID, done bool, at time.Time) error {
	if err := toggleItem(e.OnboardingChecklist, itemID, done); err != nil {
		return err
	}
	e.UpdatedAt = at
	return nil
}

// RemoveOnboardingItem deletes an onboarding checklist item.
func (e *Engagement) RemoveOnboardingItem(itemID uuid.UUID, at time.Time) error {
	if e.LifecycleStage != LifecycleOnboarding {
		return apperr.Validation("engagement is not in onboarding")
	}
	for i := range e.OnboardingChecklist {
		if e.OnboardingChecklist[i].ID == itemID {
			e.OnboardingChecklist = append(e.OnboardingChecklist[:i], e.OnboardingChecklist[i+1:]...)
			e.UpdatedAt = at
			return nil
		}
	}
	return apperr.NotFound("checklist item not found")
}

// ToggleCycleItem flips a checklist item's done flag inside the current open
// cycle. Closed cycles are never retroactively mutated.
func (e *Engagement) ToggleCycleItem(itemID uuid.UUID, done bool, at time.Time) error {
	head := e.CurrentCycle()
	if head == nil || head.Status != CycleOpen {
		return apperr.Validation("engagement has no open cycle")
	}
	if err := toggleItem(head.Checklist, itemID, done); err != nil {
		return err
	}
	e.UpdatedAt = at
	return nil
}

// ToggleProjectItem flips a checklist item's done flag inside a project.
func (e *Engagement) ToggleProjectItem(projectID, itemID uuid.UUID, done bool, at time.Time) error {
	for i := range e.Projects {
		if e.Projects[i].ID == projectID {
			if err := toggleItem(e.Projects[i].Checklist, itemID, done); err != nil {
				return err
			}
			e.UpdatedAt = at
			return nil
		}
	}
	return apperr.NotFound("project not found")
}

// AddProjectItem appends an item to a project's checklist.
func (e *Engagement) AddProjectItem(projectID uuid.UUID, text string, at time.Time) (ChecklistItem, error) {
	if strings.TrimSpace(text) == "" {
		return ChecklistItem{}, apperr.Validation("checklist item text is required")
	}
	for i := range e.Projects {
		if e.Projects[i].ID == projectID {
			item := ChecklistItem{ID: uuid.New(), Text: text}
			e.Projects[i].Checklist = append(e.Projects[i].Checklist, item)
			e.UpdatedAt = at
			return item, nil
		}
	}
	return ChecklistItem{}, apperr.NotFound("project not found")
}

// UpdateRecurringSettings replaces the recurring configuration. The default
// checklist template only affects cycles created after the edit; existing
// open and closed cycles keep their checklists as-is.
func (e *Engagement) UpdateRecurringSettings(settings RecurringSettings, at time.Time) error {
	if settings.BillingDay < 1 || settings.BillingDay > 31 {
		return apperr.Validation("billing day must be between 1 and 31")
	}
	e.Recurring = settings
	e.UpdatedAt = at
	return nil
}

func toggleItem(items []ChecklistItem, itemID uuid.UUID, done bool) error {
	for i := range items {
		if items[i].ID == itemID {
			items[i].Done = done
			return nil
		}
	}
	return apperr.NotFound("checklist item not found")
}
