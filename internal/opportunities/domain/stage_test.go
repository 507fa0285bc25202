package domain

import (
	"testing"

	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

func testCatalog() StageCatalog {
	return StageCatalog{
		{ID: uuid.New(), Key: "new_lead", Name: "New Lead", DisplayOrder: 1},
		{ID: uuid.New(), Key: "contacted", Name: "Contacted", DisplayOrder: 2},
		{ID: uuid.New(), Key: "won", Name: "Won", DisplayOrder: 3, Won: true},
		{ID: uuid.New(), Key: "lost", Name: "Lost", DisplayOrder: 4},
	}
}

func TestResolveExplicitTarget(t *testing.T) {
	catalog := testCatalog()

	resolved, err := catalog.Resolve("new_lead", TransitionTarget{StageKey: "won"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != "won" {
		t.Fatalf("resolved = %q, want won", resolved)
	}
}

func TestResolveRejectsUnknownTarget(t *testing.T) {
	catalog := testCatalog()

	_, err := catalog.Resolve("new_lead", TransitionTarget{StageKey: "archived"})
	if err == nil {
		t.Fatal("expected error for unknown stage key")
	}
	if apperr.GetCode(err) != apperr.CodeInvalidTarget {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), apperr.CodeInvalidTarget)
	}
}

func TestResolveNext(t *testing.T) {
	catalog := testCatalog()

	resolved, err := catalog.Resolve("new_lead", TransitionTarget{Next: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != "contacted" {
		t.Fatalf("resolved = %q, want contacted", resolved)
	}
}

func TestResolveNextAtLastStageIsNoop(t *testing.T) {
	catalog := testCatalog()

	resolved, err := catalog.Resolve("lost", TransitionTarget{Next: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != "lost" {
		t.Fatalf("resolved = %q, want lost (advance past last stage must resolve to current)", resolved)
	}
}

func TestResolveSameStageIsAllowed(t *testing.T) {
	catalog := testCatalog()

	resolved, err := catalog.Resolve("contacted", TransitionTarget{StageKey: "contacted"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != "contacted" {
		t.Fatalf("resolved = %q, want contacted", resolved)
	}
}

func TestWonKey(t *testing.T) {
	catalog := testCatalog()
	if got := catalog.WonKey(); got != "won" {
		t.Fatalf("WonKey = %q, want won", got)
	}

	var empty StageCatalog
	if got := empty.WonKey(); got != "" {
		t.Fatalf("WonKey on empty catalog = %q, want empty", got)
	}
}
