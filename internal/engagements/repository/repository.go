// Package repository persists the Engagement aggregate as a JSONB document
// with an optimistic version column, mirroring the opportunities store.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"clientdesk_backend/internal/engagements/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("engagement not found")
	ErrVersionConflict = errors.New("engagement was modified concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load fetches the aggregate by id.
func (r *Repository) Load(ctx context.Context, id uuid.UUID) (domain.Engagement, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT doc, version FROM engagements WHERE id = $1
	`, id).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Engagement{}, ErrNotFound
	}
	if err != nil {
		return domain.Engagement{}, err
	}

	var eng domain.Engagement
	if err := json.Unmarshal(doc, &eng); err != nil {
		return domain.Engagement{}, err
	}
	eng.Version = version
	return eng, nil
}

// FindBySourceOpportunity looks up the engagement created by win automation
// for the given opportunity, if one exists. This is the idempotency guard
// that keeps a retried conversion from creating a second engagement.
func (r *Repository) FindBySourceOpportunity(ctx context.Context, opportunityID uuid.UUID) (domain.Engagement, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT doc, version FROM engagements
		WHERE doc->>'sourceOpportunityId' = $1
		LIMIT 1
	`, opportunityID.String()).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Engagement{}, ErrNotFound
	}
	if err != nil {
		return domain.Engagement{}, err
	}

	var eng domain.Engagement
	if err := json.Unmarshal(doc, &eng); err != nil {
		return domain.Engagement{}, err
	}
	eng.Version = version
	return eng, nil
}

// Create inserts a new aggregate at version 1.
func (r *Repository) Create(ctx context.Context, eng *domain.Engagement) error {
	eng.Version = 1
	doc, err := json.Marshal(eng)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO engagements (id, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, eng.ID, eng.Version, doc, eng.CreatedAt, eng.UpdatedAt)
	return err
}

// Save writes the aggregate back, guarded by the version it was loaded at.
func (r *Repository) Save(ctx context.Context, eng *domain.Engagement) error {
	expected := eng.Version
	eng.Version = expected + 1
	doc, err := json.Marshal(eng)
	if err != nil {
		eng.Version = expected
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE engagements
		SET version = $2, doc = $3, updated_at = $4
		WHERE id = $1 AND version = $5
	`, eng.ID, eng.Version, doc, eng.UpdatedAt, expected)
	if err != nil {
		eng.Version = expected
		return err
	}
	if tag.RowsAffected() == 0 {
		eng.Version = expected
		var exists bool
		if probeErr := r.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM engagements WHERE id = $1)
		`, eng.ID).Scan(&exists); probeErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// List returns all engagements, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Engagement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doc, version FROM engagements ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Engagement, 0)
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		var eng domain.Engagement
		if err := json.Unmarshal(doc, &eng); err != nil {
			return nil, err
		}
		eng.Version = version
		items = append(items, eng)
	}
	return items, rows.Err()
}
