package domain

import (
	"fmt"
	"time"

	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// CycleStatus marks a cycle as the current open period or an archived one.
type CycleStatus string

const (
	CycleOpen   CycleStatus = "Open"
	CycleClosed CycleStatus = "Closed"
)

// Cycle is one recurring billing/execution period. Exactly one cycle per
// engagement is Open at any time: the head of Engagement.Cycles.
type Cycle struct {
	ID           uuid.UUID       `json:"id"`
	PeriodLabel  string          `json:"periodLabel"`
	Status       CycleStatus     `json:"status"`
	OpenedAt     time.Time       `json:"openedAt"`
	ClosedAt     *time.Time      `json:"closedAt,omitempty"`
	Checklist    []ChecklistItem `json:"checklist"`
	Deliverables []Deliverable   `json:"deliverables"`
}

// NewCycle opens a fresh cycle with a checklist cloned from the template.
func NewCycle(periodLabel string, template []string, at time.Time) Cycle {
	return Cycle{
		ID:           uuid.New(),
		PeriodLabel:  periodLabel,
		Status:       CycleOpen,
		OpenedAt:     at,
		Checklist:    CloneChecklist(template),
		Deliverables: []Deliverable{},
	}
}

// PeriodLabel renders the human-readable label for the month containing t.
func PeriodLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}

// NextPeriodLabel renders the label for the calendar month after t.
func NextPeriodLabel(t time.Time) string {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return PeriodLabel(firstOfMonth.AddDate(0, 1, 0))
}

// NextBillingTime returns the billing instant in the calendar month after t,
// clamping the billing day to the month's length (billing day 31 bills on the
// 30th in a 30-day month).
func NextBillingTime(t time.Time, billingDay int) time.Time {
	if billingDay < 1 {
		billingDay = 1
	}
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if billingDay > lastDay {
		billingDay = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), billingDay, 9, 0, 0, 0, t.Location())
}

// CloseCycleResult reports the outcome of a cycle rollover.
type CloseCycleResult struct {
	Closed Cycle
	Opened Cycle
}

// CloseCycle rolls the current open cycle over: the head cycle is marked
// Closed with an end timestamp and a new Open cycle labelled with the next
// calendar month is prepended, its checklist cloned from the current default
// template. The closed cycle and all prior history stay in order behind it.
//
// Precondition: the head cycle's checklist is 100% complete. An empty
// checklist is vacuously complete, so a template-less engagement can roll
// over immediately; this is intentional.
func (e *Engagement) CloseCycle(at time.Time) (CloseCycleResult, error) {
	if e.LifecycleStage != LifecycleActive {
		return CloseCycleResult{}, apperr.Validation("engagement is not active")
	}
	if e.RelationshipType != RelationshipRecurring {
		return CloseCycleResult{}, apperr.Validation("engagement is not in recurring mode")
	}
	head := e.CurrentCycle()
	if head == nil || head.Status != CycleOpen {
		return CloseCycleResult{}, apperr.Validation("engagement has no open cycle")
	}
	if !ChecklistComplete(head.Checklist) {
		return CloseCycleResult{}, apperr.Validation("current cycle checklist has unchecked items").
			WithCode(apperr.CodeCycleIncomplete)
	}

	closedAt := at
	head.Status = CycleClosed
	head.ClosedAt = &closedAt

	opened := NewCycle(NextPeriodLabel(at), e.Recurring.DefaultChecklist, at)
	e.Cycles = append([]Cycle{opened}, e.Cycles...)
	e.AppendHistory(fmt.Sprintf("Cycle %s closed, cycle %s opened", e.Cycles[1].PeriodLabel, opened.PeriodLabel), at)
	e.UpdatedAt = at

	return CloseCycleResult{Closed: e.Cycles[1], Opened: opened}, nil
}
