// Package transport defines the catalog HTTP DTOs.
package transport

import (
	"clientdesk_backend/internal/catalog/repository"

	"github.com/google/uuid"
)

type StageResponse struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	Won          bool      `json:"won"`
}

type ServiceTypeResponse struct {
	ID               uuid.UUID `json:"id"`
	Key              string    `json:"key"`
	Name             string    `json:"name"`
	Relationship     string    `json:"relationship"`
	DefaultChecklist []string  `json:"defaultChecklist"`
}

type ChannelResponse struct {
	ID   uuid.UUID `json:"id"`
	Key  string    `json:"key"`
	Name string    `json:"name"`
}

func ToStageResponses(stages []repository.Stage) []StageResponse {
	out := make([]StageResponse, 0, len(stages))
	for _, s := range stages {
		out = append(out, StageResponse{
			ID:           s.ID,
			Key:          s.Key,
			Name:         s.Name,
			DisplayOrder: s.DisplayOrder,
			Won:          s.Won,
		})
	}
	return out
}

func ToServiceTypeResponses(services []repository.ServiceType) []ServiceTypeResponse {
	out := make([]ServiceTypeResponse, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceTypeResponse{
			ID:               s.ID,
			Key:              s.Key,
			Name:             s.Name,
			Relationship:     s.Relationship,
			DefaultChecklist: s.DefaultChecklist,
		})
	}
	return out
}

func ToChannelResponses(channels []repository.Channel) []ChannelResponse {
	out := make([]ChannelResponse, 0, len(channels))
	for _, c := range channels {
		out = append(out, ChannelResponse{ID: c.ID, Key: c.Key, Name: c.Name})
	}
	return out
}
