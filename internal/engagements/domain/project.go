package domain

import (
	"fmt"
	"strings"
	"time"

	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// ProjectStatus is the execution state of a bounded body of work.
type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

// Project is one bounded, non-recurring body of work. A recurring client can
// still accumulate projects (the reconversion fast path from win automation).
type Project struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Value        int64           `json:"value"` // cents
	Status       ProjectStatus   `json:"status"`
	DueAt        *time.Time      `json:"dueAt,omitempty"`
	Billed       bool            `json:"billed"`
	Checklist    []ChecklistItem `json:"checklist"`
	Deliverables []Deliverable   `json:"deliverables"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AddProject appends a new project in In Progress status.
func (e *Engagement) AddProject(title string, value int64, dueAt *time.Time, at time.Time) (Project, error) {
	if strings.TrimSpace(title) == "" {
		return Project{}, apperr.Validation("project title is required")
	}

	p := Project{
		ID:           uuid.New(),
		Title:        title,
		Value:        value,
		Status:       ProjectInProgress,
		DueAt:        dueAt,
		Checklist:    []ChecklistItem{},
		Deliverables: []Deliverable{},
		CreatedAt:    at,
	}
	e.Projects = append(e.Projects, p)
	e.AppendHistory(fmt.Sprintf("Project added: %s", title), at)
	e.UpdatedAt = at
	return p, nil
}

// SetProjectStatus updates a project's execution state.
func (e *Engagement) SetProjectStatus(projectID uuid.UUID, status ProjectStatus, at time.Time) (Project, error) {
	switch status {
	case ProjectInProgress, ProjectCompleted, ProjectCancelled:
	default:
		return Project{}, apperr.Validation("unknown project status")
	}

	for i := range e.Projects {
		if e.Projects[i].ID == projectID {
			e.Projects[i].Status = status
			e.UpdatedAt = at
			return e.Projects[i], nil
		}
	}
	return Project{}, apperr.NotFound("project not found")
}

// MarkProjectBilled flags a project's billing as settled. Value recognition
// itself stays a manual transaction entry.
func (e *Engagement) MarkProjectBilled(projectID uuid.UUID, at time.Time) (Project, error) {
	for i := range e.Projects {
		if e.Projects[i].ID == projectID {
			e.Projects[i].Billed = true
			e.UpdatedAt = at
			return e.Projects[i], nil
		}
	}
	return Project{}, apperr.NotFound("project not found")
}
