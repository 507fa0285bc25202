package domain

import (
	"strings"
	"testing"
	"time"

	"clientdesk_backend/platform/apperr"
)

var testTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func onboardingEngagement(checklist []string) *Engagement {
	return NewOnboarding("Acme Co", Contact{Name: "Jo Smith"}, checklist, testTime)
}

func TestCompleteOnboardingRequiresChecklist(t *testing.T) {
	e := onboardingEngagement([]string{"Sign contract", "Collect access"})

	err := e.CompleteOnboarding(RelationshipRecurring, false, testTime)
	if apperr.GetCode(err) != apperr.CodeChecklistIncomplete {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), apperr.CodeChecklistIncomplete)
	}
	if e.LifecycleStage != LifecycleOnboarding {
		t.Fatal("failed completion must not change the lifecycle stage")
	}
}

func TestCompleteOnboardingWithCompleteChecklist(t *testing.T) {
	e := onboardingEngagement([]string{"Sign contract"})
	e.OnboardingChecklist[0].Done = true

	if err := e.CompleteOnboarding(RelationshipRecurring, false, testTime); err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}
	if e.LifecycleStage != LifecycleActive {
		t.Fatalf("stage = %q, want active", e.LifecycleStage)
	}
	if e.RelationshipType != RelationshipRecurring {
		t.Fatalf("relationship = %q, want Recurring", e.RelationshipType)
	}
	if len(e.Cycles) != 1 || e.Cycles[0].Status != CycleOpen {
		t.Fatal("recurring completion must open the first cycle")
	}
}

func TestCompleteOnboardingEmptyChecklistIsVacuouslyComplete(t *testing.T) {
	e := onboardingEngagement(nil)

	if err := e.CompleteOnboarding(RelationshipProject, false, testTime); err != nil {
		t.Fatalf("empty checklist must complete without force: %v", err)
	}
	if e.LifecycleStage != LifecycleActive {
		t.Fatalf("stage = %q, want active", e.LifecycleStage)
	}
}

func TestCompleteOnboardingForcedOverrideIsLogged(t *testing.T) {
	e := onboardingEngagement([]string{"Sign contract"})

	if err := e.CompleteOnboarding(RelationshipRecurring, true, testTime); err != nil {
		t.Fatalf("forced completion returned error: %v", err)
	}
	if e.LifecycleStage != LifecycleActive {
		t.Fatalf("stage = %q, want active", e.LifecycleStage)
	}

	var logged bool
	for _, h := range e.History {
		if strings.Contains(h.Message, "override") {
			logged = true
		}
	}
	if !logged {
		t.Fatal("forced completion must be recorded as an override in the history")
	}
}

func TestRelationshipTypeFixedAfterOnboarding(t *testing.T) {
	e := onboardingEngagement(nil)
	if err := e.ChangeRelationshipType(RelationshipProject); err != nil {
		t.Fatalf("relationship change during onboarding failed: %v", err)
	}

	if err := e.CompleteOnboarding(RelationshipProject, false, testTime); err != nil {
		t.Fatalf("CompleteOnboarding returned error: %v", err)
	}

	if err := e.ChangeRelationshipType(RelationshipRecurring); err == nil {
		t.Fatal("relationship type must be fixed once the engagement leaves onboarding")
	}
	if e.RelationshipType != RelationshipProject {
		t.Fatal("rejected change must not mutate the relationship type")
	}
}

func TestTerminateRequiresReasonAndPreservesState(t *testing.T) {
	e := onboardingEngagement(nil)
	_ = e.CompleteOnboarding(RelationshipRecurring, false, testTime)
	_, _ = e.AddProject("One-off audit", 50000, nil, testTime)
	cyclesBefore := len(e.Cycles)
	projectsBefore := len(e.Projects)

	if err := e.Terminate("  ", testTime); err == nil {
		t.Fatal("blank reason must be rejected")
	}

	if err := e.Terminate("client churned", testTime.Add(time.Hour)); err != nil {
		t.Fatalf("Terminate returned error: %v", err)
	}
	if e.LifecycleStage != LifecycleTerminated {
		t.Fatalf("stage = %q, want terminated", e.LifecycleStage)
	}
	if e.Contract.EndAt == nil {
		t.Fatal("termination must set the contract end date")
	}
	if len(e.Cycles) != cyclesBefore || len(e.Projects) != projectsBefore {
		t.Fatal("termination must preserve cycles and projects")
	}

	last := e.ContractHistory[len(e.ContractHistory)-1]
	if last.Reason != ReasonTermination {
		t.Fatalf("contract event reason = %q, want Termination", last.Reason)
	}
}

func TestTerminateRequiresActive(t *testing.T) {
	e := onboardingEngagement(nil)
	if err := e.Terminate("too early", testTime); err == nil {
		t.Fatal("terminating an onboarding engagement must fail")
	}
}

func TestReactivateRestoresActiveWithoutOnboarding(t *testing.T) {
	e := onboardingEngagement(nil)
	_ = e.CompleteOnboarding(RelationshipRecurring, false, testTime)
	_ = e.Terminate("pause", testTime)

	if err := e.Reactivate(testTime.Add(time.Hour)); err != nil {
		t.Fatalf("Reactivate returned error: %v", err)
	}
	if e.LifecycleStage != LifecycleActive {
		t.Fatalf("stage = %q, want active", e.LifecycleStage)
	}
	if e.Contract.EndAt != nil {
		t.Fatal("reactivation must clear the contract end date")
	}
	if e.RelationshipType != RelationshipRecurring {
		t.Fatal("reactivation must keep the original relationship type")
	}
}

func TestReactivateRequiresTerminated(t *testing.T) {
	e := onboardingEngagement(nil)
	_ = e.CompleteOnboarding(RelationshipRecurring, false, testTime)

	if err := e.Reactivate(testTime); err == nil {
		t.Fatal("reactivating an active engagement must fail")
	}
}
