// Package catalog provides the catalog bounded context module: pipeline
// stages, service types, and acquisition channels.
package catalog

import (
	"context"
	"fmt"
	"os"

	"clientdesk_backend/internal/catalog/cache"
	"clientdesk_backend/internal/catalog/repository"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape of a catalog seed definition.
type seedFile struct {
	Stages []struct {
		Key  string `yaml:"key"`
		Name string `yaml:"name"`
		Won  bool   `yaml:"won"`
	} `yaml:"stages"`
	Services []struct {
		Key          string   `yaml:"key"`
		Name         string   `yaml:"name"`
		Relationship string   `yaml:"relationship"`
		Checklist    []string `yaml:"checklist"`
	} `yaml:"services"`
	Channels []struct {
		Key  string `yaml:"key"`
		Name string `yaml:"name"`
	} `yaml:"channels"`
}

// Seeder upserts catalog rows from a YAML definition. Migrations install a
// baseline catalog; the seeder lets a deployment override it without
// hand-written SQL.
type Seeder struct {
	repo   *repository.Repository
	stages *cache.StageCache
}

// NewSeeder creates a catalog seeder.
func NewSeeder(repo *repository.Repository, stages *cache.StageCache) *Seeder {
	return &Seeder{repo: repo, stages: stages}
}

// SeedFromFile loads the YAML seed definition at path and upserts every
// entry. Rows are matched by key, so re-running is safe.
func (s *Seeder) SeedFromFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog seed: %w", err)
	}

	var def seedFile
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return fmt.Errorf("parse catalog seed: %w", err)
	}

	for i, st := range def.Stages {
		err := s.repo.UpsertStage(ctx, repository.Stage{
			ID:           uuid.New(),
			Key:          st.Key,
			Name:         st.Name,
			DisplayOrder: i + 1,
			Won:          st.Won,
		})
		if err != nil {
			return fmt.Errorf("seed stage %s: %w", st.Key, err)
		}
	}

	for i, svc := range def.Services {
		relationship := svc.Relationship
		if relationship == "" {
			relationship = "Recurring"
		}
		err := s.repo.UpsertServiceType(ctx, repository.ServiceType{
			ID:               uuid.New(),
			Key:              svc.Key,
			Name:             svc.Name,
			Relationship:     relationship,
			DefaultChecklist: svc.Checklist,
			DisplayOrder:     i + 1,
			Active:           true,
		})
		if err != nil {
			return fmt.Errorf("seed service type %s: %w", svc.Key, err)
		}
	}

	for i, ch := range def.Channels {
		err := s.repo.UpsertChannel(ctx, repository.Channel{
			ID:           uuid.New(),
			Key:          ch.Key,
			Name:         ch.Name,
			DisplayOrder: i + 1,
		})
		if err != nil {
			return fmt.Errorf("seed channel %s: %w", ch.Key, err)
		}
	}

	// Seeding may have changed stage rows under the cache.
	s.stages.Invalidate(ctx)

	return nil
}
