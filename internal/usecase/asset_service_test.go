package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
)

func newTestAssetService(storage *mockObjectStorage, tiered *cache.Tiered) AssetService {
	return NewAssetService(storage, tiered, AssetServiceConfig{
		ReadPolicy: cache.TTLPolicy{Fresh: time.Minute, Stale: 5 * time.Minute},
	})
}

func TestAssetService_List(t *testing.T) {
	storage := &mockObjectStorage{
		listFn: func(_ context.Context, prefix string) ([]string, error) {
			switch {
			case strings.HasPrefix(prefix, "avatar_"):
				return []string{"avatar_u123_1700000000000.png"}, nil
			case strings.HasPrefix(prefix, "banner_"):
				return []string{"banner_u123_1700000001000.jpg"}, nil
			}
			return nil, nil
		},
	}
	svc := newTestAssetService(storage, newTestTiered())

	assets, err := svc.List(context.Background(), "u123")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	// Newest first: the banner was uploaded one second after the avatar.
	if assets[0].URL != mockNamespaceBase+"banner_u123_1700000001000.jpg" {
		t.Errorf("assets[0].URL = %q, want the newer banner first", assets[0].URL)
	}
	if assets[1].Class.String() != "avatar" {
		t.Errorf("assets[1].Class = %q, want avatar", assets[1].Class)
	}
	if !assets[0].UploadedAt.Equal(time.UnixMilli(1700000001000)) {
		t.Errorf("assets[0].UploadedAt = %v, want key timestamp", assets[0].UploadedAt)
	}
}

func TestAssetService_ListCached(t *testing.T) {
	listCalls := 0
	storage := &mockObjectStorage{
		listFn: func(context.Context, string) ([]string, error) {
			listCalls++
			return []string{"avatar_u123_1700000000000.png"}, nil
		},
	}
	svc := newTestAssetService(storage, newTestTiered())

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background(), "u123"); err != nil {
			t.Fatalf("List() #%d error = %v", i+1, err)
		}
	}

	// One storage scan per class on the first read only.
	if listCalls != 2 {
		t.Errorf("storage list calls = %d, want 2 (one per class, then cached)", listCalls)
	}
}

func TestAssetService_UploadInvalidatesListing(t *testing.T) {
	listCalls := 0
	storage := &mockObjectStorage{
		listFn: func(context.Context, string) ([]string, error) {
			listCalls++
			return []string{"avatar_u123_1700000000000.png"}, nil
		},
	}
	tiered := newTestTiered()
	assetSvc := newTestAssetService(storage, tiered)
	uploadSvc := NewUploadService(storage, tiered).(*uploadService)
	uploadSvc.now = fixedNow

	if _, err := assetSvc.List(context.Background(), "u123"); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	input := UploadInput{
		SubjectID:   "u123",
		Class:       "avatar",
		Filename:    "new.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("data"),
	}
	if _, err := uploadSvc.Upload(context.Background(), input); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if _, err := assetSvc.List(context.Background(), "u123"); err != nil {
		t.Fatalf("List() after upload error = %v", err)
	}

	// The upload invalidated assets:u123:*, so the second read recomputed.
	if listCalls != 4 {
		t.Errorf("storage list calls = %d, want 4 (recompute after upload)", listCalls)
	}
}

func TestAssetService_PrefixOverMatchFiltered(t *testing.T) {
	storage := &mockObjectStorage{
		listFn: func(_ context.Context, prefix string) ([]string, error) {
			if strings.HasPrefix(prefix, "avatar_") {
				// A prefix scan for u1 also surfaces subject u1_extra.
				return []string{
					"avatar_u1_1700000000000.png",
					"avatar_u1_extra_1700000000000.png",
				}, nil
			}
			return nil, nil
		},
	}
	svc := newTestAssetService(storage, newTestTiered())

	assets, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(assets) != 1 {
		t.Fatalf("len(assets) = %d, want 1 (over-matched subject filtered)", len(assets))
	}
	if assets[0].URL != mockNamespaceBase+"avatar_u1_1700000000000.png" {
		t.Errorf("assets[0].URL = %q, want u1's own asset", assets[0].URL)
	}
}

func TestAssetService_StorageErrorPropagates(t *testing.T) {
	scanErr := errors.New("listing interrupted")
	storage := &mockObjectStorage{
		listFn: func(context.Context, string) ([]string, error) {
			return nil, scanErr
		},
	}
	svc := newTestAssetService(storage, newTestTiered())

	if _, err := svc.List(context.Background(), "u123"); !errors.Is(err, scanErr) {
		t.Errorf("List() error = %v, want wrapped storage error", err)
	}
}

func TestAssetService_CacheControl(t *testing.T) {
	svc := newTestAssetService(&mockObjectStorage{}, newTestTiered())

	want := fmt.Sprintf("max-age=%d, stale-while-revalidate=%d", 60, 300)
	if got := svc.CacheControl(); got != want {
		t.Errorf("CacheControl() = %q, want %q", got, want)
	}
}
