package domain

import (
	"strings"
	"time"

	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Deliverable is a countable production unit tracked within exactly one
// cycle or one project. Current is never clamped above Goal: over-delivery
// is legal and preserved in data.
type Deliverable struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Goal     int       `json:"goal"`    // >= 1
	Current  int       `json:"current"` // >= 0, unbounded above Goal
}

// Progress returns the completion ratio clamped to [0, 1]. The clamp is for
// display only; the stored Current keeps any over-delivery.
func (d Deliverable) Progress() float64 {
	if d.Goal <= 0 {
		return 0
	}
	ratio := float64(d.Current) / float64(d.Goal)
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

// AddDeliverable appends a new deliverable to the container list.
func AddDeliverable(list *[]Deliverable, name, category string, goal int) (Deliverable, error) {
	if strings.TrimSpace(name) == "" {
		return Deliverable{}, apperr.Validation("deliverable name is required")
	}
	if goal < 1 {
		return Deliverable{}, apperr.Validation("deliverable goal must be at least 1")
	}
	d := Deliverable{ID: uuid.New(), Name: name, Category: category, Goal: goal}
	*list = append(*list, d)
	return d, nil
}

// IncrementDeliverable adjusts a deliverable's counter by delta, which may be
// negative. Current floors at 0 and has no ceiling.
func IncrementDeliverable(list []Deliverable, id uuid.UUID, delta int) (Deliverable, error) {
	for i := range list {
		if list[i].ID == id {
			next := list[i].Current + delta
			if next < 0 {
				next = 0
			}
			list[i].Current = next
			return list[i], nil
		}
	}
	return Deliverable{}, apperr.NotFound("deliverable not found")
}

// RemoveDeliverable deletes a deliverable from the container list.
func RemoveDeliverable(list *[]Deliverable, id uuid.UUID) error {
	for i := range *list {
		if (*list)[i].ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("deliverable not found")
}

// deliverableContainer locates the deliverable list for a cycle or project id.
// A deliverable belongs to exactly one container, never both.
func (e *Engagement) deliverableContainer(containerID uuid.UUID) (*[]Deliverable, error) {
	for i := range e.Cycles {
		if e.Cycles[i].ID == containerID {
			return &e.Cycles[i].Deliverables, nil
		}
	}
	for i := range e.Projects {
		if e.Projects[i].ID == containerID {
			return &e.Projects[i].Deliverables, nil
		}
	}
	return nil, apperr.NotFound("no cycle or project with that id")
}

// AddDeliverableTo adds a deliverable to the cycle or project identified by
// containerID.
func (e *Engagement) AddDeliverableTo(containerID uuid.UUID, name, category string, goal int, at time.Time) (Deliverable, error) {
	list, err := e.deliverableContainer(containerID)
	if err != nil {
		return Deliverable{}, err
	}
	d, err := AddDeliverable(list, name, category, goal)
	if err != nil {
		return Deliverable{}, err
	}
	e.UpdatedAt = at
	return d, nil
}

// IncrementDeliverableIn adjusts a deliverable inside the given container.
func (e *Engagement) IncrementDeliverableIn(containerID, deliverableID uuid.UUID, delta int, at time.Time) (Deliverable, error) {
	list, err := e.deliverableContainer(containerID)
	if err != nil {
		return Deliverable{}, err
	}
	d, err := IncrementDeliverable(*list, deliverableID, delta)
	if err != nil {
		return Deliverable{}, err
	}
	e.UpdatedAt = at
	return d, nil
}

// RemoveDeliverableFrom removes a deliverable from the given container.
func (e *Engagement) RemoveDeliverableFrom(containerID, deliverableID uuid.UUID, at time.Time) error {
	list, err := e.deliverableContainer(containerID)
	if err != nil {
		return err
	}
	if err := RemoveDeliverable(list, deliverableID); err != nil {
		return err
	}
	e.UpdatedAt = at
	return nil
}
