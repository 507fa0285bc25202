// Package repository provides read access to the static catalogs: pipeline
// stages, service types, and acquisition channels.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("catalog entry not found")

// Stage is one pipeline stage row, ordered by DisplayOrder.
type Stage struct {
	ID           uuid.UUID
	Key          string
	Name         string
	DisplayOrder int
	Won          bool
}

// ServiceType is an offered service with its conversion defaults.
type ServiceType struct {
	ID               uuid.UUID
	Key              string
	Name             string
	Relationship     string // "Recurring" or "Project"
	DefaultChecklist []string
	DisplayOrder     int
	Active           bool
}

// Channel is an acquisition channel.
type Channel struct {
	ID           uuid.UUID
	Key          string
	Name         string
	DisplayOrder int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Stages returns the full stage catalog in display order.
func (r *Repository) Stages(ctx context.Context) ([]Stage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, name, display_order, is_won
		FROM stages
		ORDER BY display_order ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Stage, 0)
	for rows.Next() {
		var s Stage
		if err := rows.Scan(&s.ID, &s.Key, &s.Name, &s.DisplayOrder, &s.Won); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ServiceTypes returns active service types in display order.
func (r *Repository) ServiceTypes(ctx context.Context) ([]ServiceType, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, name, relationship, default_checklist, display_order, is_active
		FROM service_types
		WHERE is_active = true
		ORDER BY display_order ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ServiceType, 0)
	for rows.Next() {
		var s ServiceType
		if err := rows.Scan(&s.ID, &s.Key, &s.Name, &s.Relationship, &s.DefaultChecklist, &s.DisplayOrder, &s.Active); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ServiceTypeByID looks up a single service type, active or not.
func (r *Repository) ServiceTypeByID(ctx context.Context, id uuid.UUID) (ServiceType, error) {
	var s ServiceType
	err := r.pool.QueryRow(ctx, `
		SELECT id, key, name, relationship, default_checklist, display_order, is_active
		FROM service_types
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Key, &s.Name, &s.Relationship, &s.DefaultChecklist, &s.DisplayOrder, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceType{}, ErrNotFound
	}
	if err != nil {
		return ServiceType{}, err
	}
	return s, nil
}

// Channels returns all acquisition channels in display order.
func (r *Repository) Channels(ctx context.Context) ([]Channel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, name, display_order
		FROM channels
		ORDER BY display_order ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Channel, 0)
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.ID, &c.Key, &c.Name, &c.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ChannelByID looks up a single channel.
func (r *Repository) ChannelByID(ctx context.Context, id uuid.UUID) (Channel, error) {
	var c Channel
	err := r.pool.QueryRow(ctx, `
		SELECT id, key, name, display_order FROM channels WHERE id = $1
	`, id).Scan(&c.ID, &c.Key, &c.Name, &c.DisplayOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, ErrNotFound
	}
	if err != nil {
		return Channel{}, err
	}
	return c, nil
}

// UpsertStage inserts or updates a stage row by key (used by the seeder).
func (r *Repository) UpsertStage(ctx context.Context, s Stage) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stages (id, key, name, display_order, is_won)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name, display_order = EXCLUDED.display_order, is_won = EXCLUDED.is_won
	`, s.ID, s.Key, s.Name, s.DisplayOrder, s.Won)
	return err
}

// UpsertServiceType inserts or updates a service type row by key.
func (r *Repository) UpsertServiceType(ctx context.Context, s ServiceType) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_types (id, key, name, relationship, default_checklist, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name, relationship = EXCLUDED.relationship,
			default_checklist = EXCLUDED.default_checklist,
			display_order = EXCLUDED.display_order, is_active = EXCLUDED.is_active
	`, s.ID, s.Key, s.Name, s.Relationship, s.DefaultChecklist, s.DisplayOrder, s.Active)
	return err
}

// UpsertChannel inserts or updates a channel row by key.
func (r *Repository) UpsertChannel(ctx context.Context, c Channel) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channels (id, key, name, display_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name, display_order = EXCLUDED.display_order
	`, c.ID, c.Key, c.Name, c.DisplayOrder)
	return err
}
