package domain

import (
	"testing"
	"time"

	"clientdesk_backend/platform/apperr"
)

func activeRecurring(template []string) *Engagement {
	e := NewOnboarding("Acme Co", Contact{Name: "Jo Smith"}, nil, testTime)
	e.Recurring = RecurringSettings{BillingDay: 5, DefaultChecklist: template}
	_ = e.CompleteOnboarding(RelationshipRecurring, false, testTime)
	return e
}

func TestCloseCycleRequiresCompleteChecklist(t *testing.T) {
	e := activeRecurring([]string{"Publish report", "Invoice client"})

	_, err := e.CloseCycle(testTime)
	if apperr.GetCode(err) != apperr.CodeCycleIncomplete {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), apperr.CodeCycleIncomplete)
	}
	if len(e.Cycles) != 1 {
		t.Fatal("failed rollover must not open a new cycle")
	}
}

func TestCloseCycleRollsOverToNextMonth(t *testing.T) {
	e := activeRecurring([]string{"Publish report"})
	head := e.CurrentCycle()
	for i := range head.Checklist {
		head.Checklist[i].Done = true
	}
	oldHeadID := head.ID

	result, err := e.CloseCycle(testTime)
	if err != nil {
		t.Fatalf("CloseCycle returned error: %v", err)
	}

	if result.Closed.ID != oldHeadID || result.Closed.Status != CycleClosed {
		t.Fatal("previous head must be the closed cycle")
	}
	if result.Closed.ClosedAt == nil {
		t.Fatal("closed cycle must carry an end timestamp")
	}
	if result.Opened.PeriodLabel != "April 2026" {
		t.Fatalf("opened period = %q, want April 2026", result.Opened.PeriodLabel)
	}

	if len(e.Cycles) != 2 {
		t.Fatalf("cycles = %d, want 2", len(e.Cycles))
	}
	if e.Cycles[0].ID != result.Opened.ID {
		t.Fatal("new cycle must be prepended as the head")
	}
	if e.Cycles[1].Status != CycleClosed {
		t.Fatal("closed cycle must stay in order behind the head")
	}
}

func TestCloseCycleClonesTemplateWithFreshIdentities(t *testing.T) {
	e := activeRecurring([]string{"Publish report"})
	head := e.CurrentCycle()
	head.Checklist[0].Done = true
	oldItemID := head.Checklist[0].ID

	result, err := e.CloseCycle(testTime)
	if err != nil {
		t.Fatalf("CloseCycle returned error: %v", err)
	}

	opened := result.Opened
	if len(opened.Checklist) != 1 {
		t.Fatalf("opened checklist = %d items, want 1", len(opened.Checklist))
	}
	if opened.Checklist[0].ID == oldItemID {
		t.Fatal("cloned checklist items must get fresh identities")
	}
	if opened.Checklist[0].Done {
		t.Fatal("cloned checklist items must start unchecked")
	}
}

func TestCloseCycleEmptyChecklistIsVacuouslyComplete(t *testing.T) {
	e := activeRecurring(nil)

	if _, err := e.CloseCycle(testTime); err != nil {
		t.Fatalf("empty checklist must roll over immediately: %v", err)
	}
}

func TestCloseCycleTemplateEditOnlyAffectsFutureCycles(t *testing.T) {
	e := activeRecurring(nil)
	if err := e.UpdateRecurringSettings(RecurringSettings{
		BillingDay:       5,
		DefaultChecklist: []string{"New template item"},
	}, testTime); err != nil {
		t.Fatalf("UpdateRecurringSettings returned error: %v", err)
	}
	if len(e.CurrentCycle().Checklist) != 0 {
		t.Fatal("template edit must not touch the open cycle")
	}

	result, err := e.CloseCycle(testTime)
	if err != nil {
		t.Fatalf("CloseCycle returned error: %v", err)
	}
	if len(result.Opened.Checklist) != 1 || result.Opened.Checklist[0].Text != "New template item" {
		t.Fatal("new cycle must use the edited template")
	}
}

func TestCloseCycleRequiresActiveRecurring(t *testing.T) {
	project := NewOnboarding("Acme Co", Contact{}, nil, testTime)
	_ = project.CompleteOnboarding(RelationshipProject, false, testTime)
	if _, err := project.CloseCycle(testTime); err == nil {
		t.Fatal("project-mode engagement must not roll cycles")
	}

	onboarding := NewOnboarding("Beta Co", Contact{}, nil, testTime)
	if _, err := onboarding.CloseCycle(testTime); err == nil {
		t.Fatal("onboarding engagement must not roll cycles")
	}
}

func TestNextPeriodLabelAcrossYearBoundary(t *testing.T) {
	dec := time.Date(2026, time.December, 15, 10, 0, 0, 0, time.UTC)
	if got := NextPeriodLabel(dec); got != "January 2027" {
		t.Fatalf("NextPeriodLabel = %q, want January 2027", got)
	}
}

func TestNextBillingTimeClampsDayToMonthLength(t *testing.T) {
	jan := time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC)
	billAt := NextBillingTime(jan, 31)
	// February 2026 has 28 days.
	if billAt.Month() != time.February || billAt.Day() != 28 {
		t.Fatalf("billAt = %v, want Feb 28", billAt)
	}
}
