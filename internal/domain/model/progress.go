package model

import (
	"errors"
	"time"
)

var (
	ErrEmptyAssetID   = errors.New("asset ID cannot be empty")
	ErrInvalidPercent = errors.New("percent must be between 0 and 100")
)

// Progress records how far a subject has played an asset.
// Exactly one logical record exists per (SubjectID, AssetID) pair; writes are
// last-write-wins upserts, so out-of-order and duplicate reports are harmless.
type Progress struct {
	SubjectID string
	AssetID   string
	Percent   int
	UpdatedAt time.Time
}

// NewProgress validates and constructs a progress record.
func NewProgress(subjectID, assetID string, percent int) (*Progress, error) {
	if subjectID == "" {
		return nil, ErrEmptySubjectID
	}
	if assetID == "" {
		return nil, ErrEmptyAssetID
	}
	if percent < 0 || percent > 100 {
		return nil, ErrInvalidPercent
	}

	return &Progress{
		SubjectID: subjectID,
		AssetID:   assetID,
		Percent:   percent,
		UpdatedAt: time.Now(),
	}, nil
}

// IsComplete returns true once playback reached the end.
func (p *Progress) IsComplete() bool {
	return p.Percent >= 100
}
