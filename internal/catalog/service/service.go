// Package service exposes catalog lookups to the rest of the application.
package service

import (
	"context"
	"errors"

	"clientdesk_backend/internal/catalog/cache"
	"clientdesk_backend/internal/catalog/repository"
	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repository is the data access interface the catalog service needs.
type Repository interface {
	Stages(ctx context.Context) ([]repository.Stage, error)
	ServiceTypes(ctx context.Context) ([]repository.ServiceType, error)
	ServiceTypeByID(ctx context.Context, id uuid.UUID) (repository.ServiceType, error)
	Channels(ctx context.Context) ([]repository.Channel, error)
	ChannelByID(ctx context.Context, id uuid.UUID) (repository.Channel, error)
}

// Service reads catalogs, with a read-through cache in front of the stage
// table since every pipeline transition consults it.
type Service struct {
	repo   Repository
	stages *cache.StageCache
}

// New creates a catalog service. stages may be nil to disable caching.
func New(repo Repository, stages *cache.StageCache) *Service {
	return &Service{repo: repo, stages: stages}
}

// Stages returns the ordered stage catalog.
func (s *Service) Stages(ctx context.Context) ([]repository.Stage, error) {
	if cached, ok := s.stages.Get(ctx); ok {
		return cached, nil
	}

	stages, err := s.repo.Stages(ctx)
	if err != nil {
		return nil, err
	}
	s.stages.Set(ctx, stages)
	return stages, nil
}

// ServiceTypes returns the active service types.
func (s *Service) ServiceTypes(ctx context.Context) ([]repository.ServiceType, error) {
	return s.repo.ServiceTypes(ctx)
}

// ServiceTypeByID looks up one service type.
func (s *Service) ServiceTypeByID(ctx context.Context, id uuid.UUID) (repository.ServiceType, error) {
	st, err := s.repo.ServiceTypeByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ServiceType{}, apperr.NotFound("service type not found")
	}
	return st, err
}

// Channels returns the acquisition channels.
func (s *Service) Channels(ctx context.Context) ([]repository.Channel, error) {
	return s.repo.Channels(ctx)
}

// ChannelByID looks up one channel.
func (s *Service) ChannelByID(ctx context.Context, id uuid.UUID) (repository.Channel, error) {
	ch, err := s.repo.ChannelByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Channel{}, apperr.NotFound("channel not found")
	}
	return ch, err
}
