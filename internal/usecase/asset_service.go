package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
)

// Asset describes one uploaded blob belonging to a subject.
type Asset struct {
	URL        string
	Class      model.AssetClass
	UploadedAt time.Time
}

// AssetService lists a subject's uploaded assets through the tiered
// cache. Uploads and deletes invalidate the cached listing, so it only
// recomputes after the subject's assets actually changed.
type AssetService interface {
	// List returns the subject's assets, newest first.
	List(ctx context.Context, subjectID string) ([]Asset, error)

	// CacheControl returns the Cache-Control header value for cached
	// asset listings.
	CacheControl() string
}

// AssetServiceConfig holds configuration for AssetService.
type AssetServiceConfig struct {
	// ReadPolicy is the TTL policy for cached listings. The listing is an
	// aggregate that tolerates short staleness, so the default carries a
	// stale-while-revalidate window.
	ReadPolicy cache.TTLPolicy
}

// DefaultAssetServiceConfig returns the default configuration.
func DefaultAssetServiceConfig() AssetServiceConfig {
	return AssetServiceConfig{
		ReadPolicy: cache.TTLPolicy{
			Fresh: time.Minute,
			Stale: 5 * time.Minute,
		},
	}
}

// assetJSON is the JSON representation of an Asset for caching.
type assetJSON struct {
	URL        string `json:"url"`
	Class      string `json:"class"`
	UploadedAt string `json:"uploaded_at"`
}

type assetService struct {
	storage repository.ObjectStorage
	cache   *cache.Tiered

	readPolicy cache.TTLPolicy
}

// NewAssetService creates a new AssetService instance.
func NewAssetService(storage repository.ObjectStorage, tiered *cache.Tiered, cfg AssetServiceConfig) AssetService {
	return &assetService{
		storage:    storage,
		cache:      tiered,
		readPolicy: cfg.ReadPolicy,
	}
}

// List returns the subject's assets through the tiered cache under
// assets:{subject}:list, the key space upload and delete invalidate.
func (s *assetService) List(ctx context.Context, subjectID string) ([]Asset, error) {
	key := fmt.Sprintf("assets:%s:list", subjectID)

	data, err := s.cache.GetOrCompute(ctx, key, s.readPolicy, func(ctx context.Context) ([]byte, error) {
		assets, err := s.listFromStorage(ctx, subjectID)
		if err != nil {
			return nil, err
		}

		cached := make([]assetJSON, 0, len(assets))
		for _, a := range assets {
			cached = append(cached, assetJSON{
				URL:        a.URL,
				Class:      a.Class.String(),
				UploadedAt: a.UploadedAt.Format(time.RFC3339Nano),
			})
		}
		return json.Marshal(cached)
	})
	if err != nil {
		return nil, err
	}

	var cached []assetJSON
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode cached asset list: %w", err)
	}

	assets := make([]Asset, 0, len(cached))
	for _, c := range cached {
		uploadedAt, err := time.Parse(time.RFC3339Nano, c.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("parse uploaded_at: %w", err)
		}
		assets = append(assets, Asset{
			URL:        c.URL,
			Class:      model.AssetClass(c.Class),
			UploadedAt: uploadedAt,
		})
	}
	return assets, nil
}

// listFromStorage enumerates the subject's objects per class prefix.
// A prefix scan over-matches subjects whose ID extends ours with an
// underscore, so every candidate key is re-checked against the exact
// subject before it is included.
func (s *assetService) listFromStorage(ctx context.Context, subjectID string) ([]Asset, error) {
	var assets []Asset

	for _, class := range []model.AssetClass{model.ClassAvatar, model.ClassBanner} {
		keys, err := s.storage.List(ctx, fmt.Sprintf("%s_%s_", class, subjectID))
		if err != nil {
			return nil, fmt.Errorf("list %s objects: %w", class, err)
		}

		for _, raw := range keys {
			storageKey, err := model.ParseStorageKey(raw)
			if err != nil {
				continue
			}
			if subjectFromKey(storageKey) != subjectID {
				continue
			}
			uploadedAt, err := storageKey.UploadedAt()
			if err != nil {
				continue
			}

			assets = append(assets, Asset{
				URL:        s.storage.PublicURL(raw),
				Class:      class,
				UploadedAt: uploadedAt,
			})
		}
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].UploadedAt.After(assets[j].UploadedAt)
	})

	return assets, nil
}

// CacheControl returns the header value matching the read policy.
func (s *assetService) CacheControl() string {
	return s.readPolicy.CacheControl()
}
