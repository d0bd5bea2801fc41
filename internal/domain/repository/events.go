package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ViewEvent is emitted when a subject reports playback progress.
// Consumers (e.g., a view-count aggregator) receive it at most once;
// delivery is best-effort and independent of the progress write.
type ViewEvent struct {
	ID        uuid.UUID `json:"id"`
	SubjectID string    `json:"subject_id"`
	AssetID   string    `json:"asset_id"`
	Percent   int       `json:"percent"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher defines the interface for publishing playback events.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type EventPublisher interface {
	// PublishView publishes a playback view event.
	PublishView(ctx context.Context, event ViewEvent) error
}
