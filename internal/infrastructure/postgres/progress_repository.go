package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProgressRepository implements repository.ProgressRepository using PostgreSQL.
type ProgressRepository struct {
	db DBTX
}

// Compile-time verification that ProgressRepository implements the contract.
var _ repository.ProgressRepository = (*ProgressRepository)(nil)

// NewProgressRepository creates a new ProgressRepository instance.
func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert creates or overwrites the record for (SubjectID, AssetID).
// The database serializes writes for the same key, so last write wins by
// arrival order and repeated calls are harmless.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *model.Progress) error {
	const query = `
		INSERT INTO playback_progress (subject_id, asset_id, percent, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id, asset_id)
		DO UPDATE SET percent = EXCLUDED.percent, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		progress.SubjectID,
		progress.AssetID,
		progress.Percent,
		progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	return nil
}

// GetByAsset retrieves the record for a (subject, asset) pair.
func (r *ProgressRepository) GetByAsset(ctx context.Context, subjectID, assetID string) (*model.Progress, error) {
	const query = `
		SELECT subject_id, asset_id, percent, updated_at
		FROM playback_progress
		WHERE subject_id = $1 AND asset_id = $2`

	var p model.Progress
	err := r.db.QueryRow(ctx, query, subjectID, assetID).Scan(
		&p.SubjectID,
		&p.AssetID,
		&p.Percent,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return &p, nil
}

// ListBySubject retrieves all progress records for a subject, most recently
// updated first.
func (r *ProgressRepository) ListBySubject(ctx context.Context, subjectID string) ([]*model.Progress, error) {
	const query = `
		SELECT subject_id, asset_id, percent, updated_at
		FROM playback_progress
		WHERE subject_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var records []*model.Progress
	for rows.Next() {
		var p model.Progress
		if err := rows.Scan(&p.SubjectID, &p.AssetID, &p.Percent, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		records = append(records, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress rows: %w", err)
	}

	return records, nil
}
