package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestApplyStageRecordsHistory(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	opp := New("Acme redesign", 500000, "new_lead", now)

	opp.ApplyStage("contacted", now.Add(time.Hour))

	if opp.StageKey != "contacted" {
		t.Fatalf("StageKey = %q, want contacted", opp.StageKey)
	}
	last := opp.History[len(opp.History)-1]
	if last.Message != "Stage changed from new_lead to contacted" {
		t.Fatalf("history message = %q", last.Message)
	}
}

func TestHasResolvedClient(t *testing.T) {
	opp := New("Acme", 0, "new_lead", time.Now())
	if opp.HasResolvedClient() {
		t.Fatal("nil client id should not resolve")
	}

	nilID := uuid.Nil
	opp.ClientID = &nilID
	if opp.HasResolvedClient() {
		t.Fatal("uuid.Nil sentinel should not resolve")
	}

	real := uuid.New()
	opp.ClientID = &real
	if !opp.HasResolvedClient() {
		t.Fatal("real engagement id should resolve")
	}
}

func TestDuplicateGetsFreshIdentityAndEmptyLogs(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	orig := New("Acme redesign", 500000, "contacted", now)
	orig.Priority = PriorityHigh
	orig.Contact = Contact{Name: "Jo Smith", Email: "jo@acme.test"}
	channelID := uuid.New()
	orig.ChannelID = &channelID
	orig.AppendComment(uuid.New(), "call went well", now)
	orig.ApplyStage("won", now)

	dup := orig.Duplicate("new_lead", now.Add(time.Hour))

	if dup.ID == orig.ID {
		t.Fatal("duplicate must get a fresh id")
	}
	if dup.Title != "Acme redesign (copy)" {
		t.Fatalf("Title = %q", dup.Title)
	}
	if dup.StageKey != "new_lead" {
		t.Fatalf("StageKey = %q, want first stage", dup.StageKey)
	}
	if dup.Probability != 0 {
		t.Fatalf("Probability = %d, want 0", dup.Probability)
	}
	if len(dup.Comments) != 0 {
		t.Fatalf("Comments = %d entries, want none", len(dup.Comments))
	}
	// Only the creation entry; the original's log is not carried over.
	if len(dup.History) != 1 {
		t.Fatalf("History = %d entries, want 1", len(dup.History))
	}
	if dup.Priority != PriorityHigh || dup.Contact.Name != "Jo Smith" {
		t.Fatal("descriptive fields must carry over")
	}

	// Pointer sub-state must not be shared.
	*dup.ChannelID = uuid.New()
	if *orig.ChannelID != channelID {
		t.Fatal("duplicate shares ChannelID pointer with original")
	}
}
