package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewFromWonOpportunityRecurring(t *testing.T) {
	oppID := uuid.New()
	e := NewFromWonOpportunity(ConversionSeed{
		OpportunityID:     oppID,
		Title:             "Acme retainer",
		Value:             500000,
		Contact:           Contact{Name: "Jo Smith", Email: "jo@acme.test"},
		Relationship:      RelationshipRecurring,
		ChecklistTemplate: []string{"Monthly report"},
	}, testTime)

	if e.LifecycleStage != LifecycleActive {
		t.Fatalf("stage = %q, want active (won conversion skips onboarding)", e.LifecycleStage)
	}
	if e.Contract.Value != 500000 {
		t.Fatalf("contract value = %d, want prefill from opportunity", e.Contract.Value)
	}
	if len(e.Cycles) != 1 || e.Cycles[0].Status != CycleOpen {
		t.Fatal("recurring conversion must open exactly one cycle")
	}
	if e.Cycles[0].PeriodLabel != "March 2026" {
		t.Fatalf("period = %q, want March 2026", e.Cycles[0].PeriodLabel)
	}
	if len(e.Cycles[0].Checklist) != 1 || e.Cycles[0].Checklist[0].Text != "Monthly report" {
		t.Fatal("first cycle checklist must come from the service template")
	}
	if e.SourceOpportunityID == nil || *e.SourceOpportunityID != oppID {
		t.Fatal("source opportunity id must be recorded")
	}
	if len(e.ContractHistory) != 1 || e.ContractHistory[0].Reason != ReasonInitialAgreement {
		t.Fatal("conversion must log an Initial Agreement contract event")
	}
}

func TestNewFromWonOpportunityProjectMode(t *testing.T) {
	e := NewFromWonOpportunity(ConversionSeed{
		OpportunityID: uuid.New(),
		Title:         "One-off audit",
		Value:         120000,
		Contact:       Contact{Name: "Sam Lee"},
		Relationship:  RelationshipProject,
	}, testTime)

	if len(e.Cycles) != 0 {
		t.Fatal("project conversion must not open a cycle")
	}
	if len(e.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(e.Projects))
	}
	p := e.Projects[0]
	if p.Title != "One-off audit" || p.Value != 120000 || p.Status != ProjectInProgress {
		t.Fatalf("seeded project = %+v", p)
	}
}

func TestNewFromWonOpportunityDefaultsToRecurring(t *testing.T) {
	e := NewFromWonOpportunity(ConversionSeed{
		OpportunityID: uuid.New(),
		Title:         "Untyped deal",
		Contact:       Contact{Name: "Jo"},
	}, testTime)

	if e.RelationshipType != RelationshipRecurring {
		t.Fatalf("relationship = %q, want Recurring default", e.RelationshipType)
	}
}

func TestNewFromWonOpportunityFallsBackToTitleForName(t *testing.T) {
	e := NewFromWonOpportunity(ConversionSeed{
		OpportunityID: uuid.New(),
		Title:         "Nameless deal",
		Contact:       Contact{},
	}, testTime)

	if e.Name != "Nameless deal" {
		t.Fatalf("name = %q, want the opportunity title", e.Name)
	}
}
