package domain

import (
	"testing"
)

func TestAddDeliverableValidatesGoal(t *testing.T) {
	e := activeRecurring(nil)
	cycleID := e.CurrentCycle().ID

	if _, err := e.AddDeliverableTo(cycleID, "Blog posts", "content", 0, testTime); err == nil {
		t.Fatal("goal below 1 must be rejected")
	}
	if _, err := e.AddDeliverableTo(cycleID, "", "content", 3, testTime); err == nil {
		t.Fatal("empty name must be rejected")
	}
	if _, err := e.AddDeliverableTo(cycleID, "Blog posts", "content", 1, testTime); err != nil {
		t.Fatalf("goal of 1 must be accepted: %v", err)
	}
}

func TestIncrementFloorsAtZeroAndIsUnboundedAbove(t *testing.T) {
	e := activeRecurring(nil)
	cycleID := e.CurrentCycle().ID
	d, err := e.AddDeliverableTo(cycleID, "Blog posts", "content", 3, testTime)
	if err != nil {
		t.Fatalf("AddDeliverableTo returned error: %v", err)
	}

	got, err := e.IncrementDeliverableIn(cycleID, d.ID, -5, testTime)
	if err != nil {
		t.Fatalf("IncrementDeliverableIn returned error: %v", err)
	}
	if got.Current != 0 {
		t.Fatalf("Current = %d, want floor at 0", got.Current)
	}

	for i := 0; i < 5; i++ {
		got, err = e.IncrementDeliverableIn(cycleID, d.ID, 1, testTime)
		if err != nil {
			t.Fatalf("increment %d returned error: %v", i, err)
		}
	}
	if got.Current != 5 {
		t.Fatalf("Current = %d, want 5 (no ceiling at the goal)", got.Current)
	}
}

func TestProgressClampIsDisplayOnly(t *testing.T) {
	d := Deliverable{Goal: 3, Current: 5}
	if got := d.Progress(); got != 1 {
		t.Fatalf("Progress = %v, want clamp to 1", got)
	}
	if d.Current != 5 {
		t.Fatal("clamping progress must not change the stored count")
	}

	d = Deliverable{Goal: 4, Current: 1}
	if got := d.Progress(); got != 0.25 {
		t.Fatalf("Progress = %v, want 0.25", got)
	}

	d = Deliverable{Goal: 0, Current: 2}
	if got := d.Progress(); got != 0 {
		t.Fatalf("Progress with zero goal = %v, want 0", got)
	}
}

func TestDeliverableContainerScoping(t *testing.T) {
	e := activeRecurring(nil)
	cycleID := e.CurrentCycle().ID
	p, err := e.AddProject("Site rebuild", 250000, nil, testTime)
	if err != nil {
		t.Fatalf("AddProject returned error: %v", err)
	}

	cycleDel, err := e.AddDeliverableTo(cycleID, "Posts", "", 2, testTime)
	if err != nil {
		t.Fatalf("AddDeliverableTo cycle returned error: %v", err)
	}
	if _, err := e.AddDeliverableTo(p.ID, "Pages", "", 4, testTime); err != nil {
		t.Fatalf("AddDeliverableTo project returned error: %v", err)
	}

	// A cycle deliverable is not addressable through the project container.
	if _, err := e.IncrementDeliverableIn(p.ID, cycleDel.ID, 1, testTime); err == nil {
		t.Fatal("deliverable must belong to exactly one container")
	}

	if err := e.RemoveDeliverableFrom(cycleID, cycleDel.ID, testTime); err != nil {
		t.Fatalf("RemoveDeliverableFrom returned error: %v", err)
	}
	if len(e.CurrentCycle().Deliverables) != 0 {
		t.Fatal("removed deliverable still present")
	}
}
