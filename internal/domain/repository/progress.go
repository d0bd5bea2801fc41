package repository

import (
	"context"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
)

// ProgressRepository defines persistence for playback progress records.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type ProgressRepository interface {
	// Upsert creates or overwrites the record for (SubjectID, AssetID).
	// Last write wins; the store serializes writes for the same key, so
	// duplicate and out-of-order calls are accepted without error.
	Upsert(ctx context.Context, progress *model.Progress) error

	// GetByAsset retrieves the record for a (subject, asset) pair.
	// Returns ErrProgressNotFound if no record exists.
	GetByAsset(ctx context.Context, subjectID, assetID string) (*model.Progress, error)

	// ListBySubject retrieves all progress records for a subject, most
	// recently updated first. Returns an empty slice if none exist.
	ListBySubject(ctx context.Context, subjectID string) ([]*model.Progress, error)
}
