// Package repository persists the Opportunity aggregate. Aggregates are
// stored whole as JSONB documents with an optimistic version column, so the
// engine never depends on a specific column layout for its state.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"clientdesk_backend/internal/opportunities/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("opportunity not found")
	ErrVersionConflict = errors.New("opportunity was modified concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load fetches the aggregate by id.
func (r *Repository) Load(ctx context.Context, id uuid.UUID) (domain.Opportunity, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT doc, version FROM opportunities WHERE id = $1
	`, id).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Opportunity{}, ErrNotFound
	}
	if err != nil {
		return domain.Opportunity{}, err
	}

	var opp domain.Opportunity
	if err := json.Unmarshal(doc, &opp); err != nil {
		return domain.Opportunity{}, err
	}
	opp.Version = version
	return opp, nil
}

// Create inserts a new aggregate at version 1.
func (r *Repository) Create(ctx context.Context, opp *domain.Opportunity) error {
	opp.Version = 1
	doc, err := json.Marshal(opp)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO opportunities (id, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, opp.ID, opp.Version, doc, opp.CreatedAt, opp.UpdatedAt)
	return err
}

// Save writes the aggregate back, guarded by the version it was loaded at.
// A stale version returns ErrVersionConflict and leaves the stored aggregate
// untouched; the caller must reload and retry.
func (r *Repository) Save(ctx context.Context, opp *domain.Opportunity) error {
	expected := opp.Version
	opp.Version = expected + 1
	doc, err := json.Marshal(opp)
	if err != nil {
		opp.Version = expected
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE opportunities
		SET version = $2, doc = $3, updated_at = $4
		WHERE id = $1 AND version = $5
	`, opp.ID, opp.Version, doc, opp.UpdatedAt, expected)
	if err != nil {
		opp.Version = expected
		return err
	}
	if tag.RowsAffected() == 0 {
		opp.Version = expected
		var exists bool
		if probeErr := r.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM opportunities WHERE id = $1)
		`, opp.ID).Scan(&exists); probeErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// List returns all opportunities, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Opportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doc, version FROM opportunities ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Opportunity, 0)
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		var opp domain.Opportunity
		if err := json.Unmarshal(doc, &opp); err != nil {
			return nil, err
		}
		opp.Version = version
		items = append(items, opp)
	}
	return items, rows.Err()
}
