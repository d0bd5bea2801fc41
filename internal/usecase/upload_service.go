package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/metrics"
)

var (
	// ErrMissingFile is returned when an upload carries no binary payload.
	ErrMissingFile = errors.New("file payload is required")

	// ErrForeignURL is returned when a delete request's URL does not
	// address the configured storage namespace.
	ErrForeignURL = errors.New("URL does not address the storage namespace")
)

// UploadInput contains the input parameters for ingesting an asset.
type UploadInput struct {
	SubjectID   string
	Class       model.AssetClass
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadService defines the interface for asset ingestion and deletion.
type UploadService interface {
	// Upload validates the payload, derives a storage key, pushes the
	// bytes to object storage, and returns the public URL.
	Upload(ctx context.Context, input UploadInput) (string, error)

	// Delete recovers the storage key from a public URL and removes the
	// object. Deleting an already-absent object succeeds.
	Delete(ctx context.Context, publicURL string) error
}

type uploadService struct {
	storage repository.ObjectStorage
	cache   *cache.Tiered

	now func() time.Time
}

// NewUploadService creates a new UploadService instance.
func NewUploadService(storage repository.ObjectStorage, tiered *cache.Tiered) UploadService {
	return &uploadService{
		storage: storage,
		cache:   tiered,
		now:     time.Now,
	}
}

// Upload ingests one uploaded blob. The storage write is a single
// synchronous PUT; on failure nothing was committed, so there is no
// partial cleanup to perform.
func (s *uploadService) Upload(ctx context.Context, input UploadInput) (string, error) {
	if input.Body == nil || input.Size <= 0 {
		return "", ErrMissingFile
	}

	key, err := model.NewStorageKey(input.Class, input.SubjectID, input.Filename, s.now())
	if err != nil {
		return "", err
	}

	if err := s.storage.Upload(ctx, key.String(), input.Body, input.Size, input.ContentType); err != nil {
		metrics.UploadsTotal.WithLabelValues("upload", metrics.StatusError).Inc()
		return "", fmt.Errorf("upload object: %w", err)
	}
	metrics.UploadsTotal.WithLabelValues("upload", metrics.StatusSuccess).Inc()

	s.invalidateSubject(ctx, input.SubjectID)

	return s.storage.PublicURL(key.String()), nil
}

// Delete reverses the key derivation from the public URL and issues a
// storage delete. A missing object is the desired end state and succeeds.
func (s *uploadService) Delete(ctx context.Context, publicURL string) error {
	rawKey, err := s.storage.KeyFromURL(publicURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForeignURL, err)
	}

	key, err := model.ParseStorageKey(rawKey)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, key.String()); err != nil {
		metrics.UploadsTotal.WithLabelValues("delete", metrics.StatusError).Inc()
		return fmt.Errorf("delete object: %w", err)
	}
	metrics.UploadsTotal.WithLabelValues("delete", metrics.StatusSuccess).Inc()

	// The owning subject is encoded in the key; invalidate their cached
	// reads so the next one recomputes.
	if subject := subjectFromKey(key); subject != "" {
		s.invalidateSubject(ctx, subject)
	}

	return nil
}

func (s *uploadService) invalidateSubject(ctx context.Context, subjectID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("assets:%s:*", subjectID))
}

// subjectFromKey extracts the subject segment of a storage key, the part
// between the class prefix and the timestamp suffix.
func subjectFromKey(key model.StorageKey) string {
	raw := key.String()

	// {class}_{subject}_{ms}.{ext}; the subject itself may contain
	// underscores, so trim one segment from each end.
	first := -1
	last := -1
	for i, c := range raw {
		if c != '_' {
			continue
		}
		if first == -1 {
			first = i
		}
		last = i
	}
	if first == -1 || last == first {
		return ""
	}

	return raw[first+1 : last]
}
