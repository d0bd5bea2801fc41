package usecase

import (
	"context"
	"io"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
)

// mockProgressRepository provides a configurable mock for ProgressRepository.
type mockProgressRepository struct {
	upsertFn        func(ctx context.Context, progress *model.Progress) error
	getByAssetFn    func(ctx context.Context, subjectID, assetID string) (*model.Progress, error)
	listBySubjectFn func(ctx context.Context, subjectID string) ([]*model.Progress, error)
}

func (m *mockProgressRepository) Upsert(ctx context.Context, progress *model.Progress) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, progress)
	}
	return nil
}

func (m *mockProgressRepository) GetByAsset(ctx context.Context, subjectID, assetID string) (*model.Progress, error) {
	if m.getByAssetFn != nil {
		return m.getByAssetFn(ctx, subjectID, assetID)
	}
	return nil, repository.ErrProgressNotFound
}

func (m *mockProgressRepository) ListBySubject(ctx context.Context, subjectID string) ([]*model.Progress, error) {
	if m.listBySubjectFn != nil {
		return m.listBySubjectFn(ctx, subjectID)
	}
	return nil, nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage. URL
// derivation mirrors the production namespace layout so round-trip
// behavior holds in tests.
type mockObjectStorage struct {
	uploadFn     func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	deleteFn     func(ctx context.Context, key string) error
	existsFn     func(ctx context.Context, key string) (bool, error)
	listFn       func(ctx context.Context, prefix string) ([]string, error)
	keyFromURLFn func(publicURL string) (string, error)
}

const mockNamespaceBase = "http://localhost:9000/uploads/"

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, size, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockObjectStorage) List(ctx context.Context, prefix string) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, prefix)
	}
	return nil, nil
}

func (m *mockObjectStorage) PublicURL(key string) string {
	return mockNamespaceBase + key
}

func (m *mockObjectStorage) KeyFromURL(publicURL string) (string, error) {
	if m.keyFromURLFn != nil {
		return m.keyFromURLFn(publicURL)
	}
	if len(publicURL) <= len(mockNamespaceBase) || publicURL[:len(mockNamespaceBase)] != mockNamespaceBase {
		return "", ErrForeignURL
	}
	return publicURL[len(mockNamespaceBase):], nil
}

// mockEventPublisher provides a configurable mock for EventPublisher.
type mockEventPublisher struct {
	publishViewFn func(ctx context.Context, event repository.ViewEvent) error
	events        []repository.ViewEvent
}

func (m *mockEventPublisher) PublishView(ctx context.Context, event repository.ViewEvent) error {
	m.events = append(m.events, event)
	if m.publishViewFn != nil {
		return m.publishViewFn(ctx, event)
	}
	return nil
}

// newTestTiered builds a tiered cache over two in-process stores, standing
// in for the memory and shared tiers without a network dependency.
func newTestTiered() *cache.Tiered {
	return cache.NewTiered(cache.NewMemoryStore(), cache.NewMemoryStore())
}
