package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/metrics"
)

// ProgressService defines playback progress operations.
type ProgressService interface {
	// Save upserts the progress record for (subjectID, assetID).
	// Repeated or out-of-order calls overwrite; last write observed wins.
	Save(ctx context.Context, subjectID, assetID string, percent int) error

	// Get returns the resume position for one asset.
	Get(ctx context.Context, subjectID, assetID string) (*model.Progress, error)

	// List returns all of the subject's progress records, newest first.
	List(ctx context.Context, subjectID string) ([]*model.Progress, error)

	// CacheControl returns the Cache-Control header value for cached
	// progress reads.
	CacheControl() string
}

// ProgressServiceConfig holds configuration for ProgressService.
type ProgressServiceConfig struct {
	// ReadPolicy is the TTL policy for cached progress reads. Progress is
	// per-subject private data, so the default carries no
	// stale-while-revalidate window.
	ReadPolicy cache.TTLPolicy
}

// DefaultProgressServiceConfig returns the default configuration.
func DefaultProgressServiceConfig() ProgressServiceConfig {
	return ProgressServiceConfig{
		ReadPolicy: cache.TTLPolicy{Fresh: 5 * time.Minute},
	}
}

// progressJSON is the JSON representation of a Progress record for caching.
// Using an explicit struct avoids coupling to the domain model's field names.
type progressJSON struct {
	SubjectID string `json:"subject_id"`
	AssetID   string `json:"asset_id"`
	Percent   int    `json:"percent"`
	UpdatedAt string `json:"updated_at"`
}

type progressService struct {
	repo      repository.ProgressRepository
	cache     *cache.Tiered
	publisher repository.EventPublisher

	readPolicy cache.TTLPolicy
}

// NewProgressService creates a new ProgressService instance.
// publisher may be nil, in which case no view events are emitted.
func NewProgressService(
	repo repository.ProgressRepository,
	tiered *cache.Tiered,
	publisher repository.EventPublisher,
	cfg ProgressServiceConfig,
) ProgressService {
	return &progressService{
		repo:       repo,
		cache:      tiered,
		publisher:  publisher,
		readPolicy: cfg.ReadPolicy,
	}
}

// Save upserts the record, invalidates the subject's cached reads, and
// emits a best-effort view event. The event and the cache invalidation are
// independent side effects: neither failure rolls back the write.
func (s *progressService) Save(ctx context.Context, subjectID, assetID string, percent int) error {
	progress, err := model.NewProgress(subjectID, assetID, percent)
	if err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, progress); err != nil {
		metrics.ProgressWritesTotal.WithLabelValues(metrics.StatusError).Inc()
		return err
	}
	metrics.ProgressWritesTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s:*", subjectID))

	s.publishView(ctx, progress)

	return nil
}

// publishView emits a view event for the write. Delivery is best-effort:
// failures are logged and never surfaced.
func (s *progressService) publishView(ctx context.Context, progress *model.Progress) {
	if s.publisher == nil {
		return
	}

	event := repository.ViewEvent{
		ID:        uuid.New(),
		SubjectID: progress.SubjectID,
		AssetID:   progress.AssetID,
		Percent:   progress.Percent,
		Timestamp: progress.UpdatedAt,
	}

	if err := s.publisher.PublishView(ctx, event); err != nil {
		slog.Warn("failed to publish view event",
			"subject_id", progress.SubjectID,
			"asset_id", progress.AssetID,
			"error", err,
		)
		metrics.ViewEventsTotal.WithLabelValues(metrics.StatusError).Inc()
		return
	}
	metrics.ViewEventsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
}

// Get returns the resume position for one asset, served through the
// tiered cache.
func (s *progressService) Get(ctx context.Context, subjectID, assetID string) (*model.Progress, error) {
	key := fmt.Sprintf("progress:%s:%s", subjectID, assetID)

	data, err := s.cache.GetOrCompute(ctx, key, s.readPolicy, func(ctx context.Context) ([]byte, error) {
		record, err := s.repo.GetByAsset(ctx, subjectID, assetID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(toProgressJSON(record))
	})
	if err != nil {
		return nil, err
	}

	var cached progressJSON
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode cached progress: %w", err)
	}
	return fromProgressJSON(cached)
}

// List returns the subject's progress records through the tiered cache.
func (s *progressService) List(ctx context.Context, subjectID string) ([]*model.Progress, error) {
	key := fmt.Sprintf("progress:%s:list", subjectID)

	data, err := s.cache.GetOrCompute(ctx, key, s.readPolicy, func(ctx context.Context) ([]byte, error) {
		records, err := s.repo.ListBySubject(ctx, subjectID)
		if err != nil {
			return nil, err
		}

		cached := make([]progressJSON, 0, len(records))
		for _, r := range records {
			cached = append(cached, toProgressJSON(r))
		}
		return json.Marshal(cached)
	})
	if err != nil {
		return nil, err
	}

	var cached []progressJSON
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode cached progress list: %w", err)
	}

	records := make([]*model.Progress, 0, len(cached))
	for _, c := range cached {
		record, err := fromProgressJSON(c)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// CacheControl returns the header value matching the read policy.
func (s *progressService) CacheControl() string {
	return s.readPolicy.CacheControl()
}

func toProgressJSON(p *model.Progress) progressJSON {
	return progressJSON{
		SubjectID: p.SubjectID,
		AssetID:   p.AssetID,
		Percent:   p.Percent,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromProgressJSON(c progressJSON) (*model.Progress, error) {
	updatedAt, err := time.Parse(time.RFC3339Nano, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &model.Progress{
		SubjectID: c.SubjectID,
		AssetID:   c.AssetID,
		Percent:   c.Percent,
		UpdatedAt: updatedAt,
	}, nil
}
