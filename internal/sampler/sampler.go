// Package sampler extracts evenly spaced preview frames from a media
// file and encodes them as JPEG data URLs, ready to embed in an upload
// request or a gallery response.
package sampler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
)

// Decoder provides duration probing and frame capture for one media
// source.
type Decoder interface {
	// Duration returns the media duration in seconds.
	Duration(ctx context.Context) (float64, error)

	// FrameAt decodes the frame nearest to the given offset in seconds.
	FrameAt(ctx context.Context, offsetSeconds float64) (image.Image, error)
}

// PreviewFrame is one captured frame.
type PreviewFrame struct {
	// DataURL is the frame as a base64 JPEG data URL
	// ("data:image/jpeg;base64,...").
	DataURL string `json:"dataUrl"`

	// SourceOffsetSeconds is the offset the frame was captured at.
	SourceOffsetSeconds float64 `json:"sourceOffsetSeconds"`
}

// Config holds tuning for a sampler.
type Config struct {
	// Count is the number of frames to capture.
	// Default: 4
	Count int

	// JPEGQuality is the encoder quality, 1-100.
	// Default: 85
	JPEGQuality int
}

// DefaultConfig returns a Config with production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Count:       4,
		JPEGQuality: 85,
	}
}

// Sampler captures preview frames through a Decoder.
type Sampler struct {
	decoder Decoder
	config  Config
}

// New creates a sampler. Zero config fields fall back to defaults.
func New(decoder Decoder, cfg Config) *Sampler {
	def := DefaultConfig()
	if cfg.Count <= 0 {
		cfg.Count = def.Count
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = def.JPEGQuality
	}
	return &Sampler{
		decoder: decoder,
		config:  cfg,
	}
}

// Sample captures Count frames at interior offsets i*duration/(count+1)
// for i in 1..count, so frames are spread evenly and neither the first
// nor the last instant is sampled. Frames are captured strictly in
// order. Any capture or encode failure aborts the whole run with no
// partial result.
func (s *Sampler) Sample(ctx context.Context) ([]PreviewFrame, error) {
	duration, err := s.decoder.Duration(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("media has no usable duration: %f", duration)
	}

	step := duration / float64(s.config.Count+1)
	frames := make([]PreviewFrame, 0, s.config.Count)

	for i := 1; i <= s.config.Count; i++ {
		offset := float64(i) * step

		img, err := s.decoder.FrameAt(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("capture frame at %.2fs: %w", offset, err)
		}

		dataURL, err := s.encodeFrame(img)
		if err != nil {
			return nil, fmt.Errorf("encode frame at %.2fs: %w", offset, err)
		}

		frames = append(frames, PreviewFrame{
			DataURL:             dataURL,
			SourceOffsetSeconds: offset,
		})
	}

	return frames, nil
}

// encodeFrame encodes one image as a base64 JPEG data URL.
func (s *Sampler) encodeFrame(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.config.JPEGQuality}); err != nil {
		return "", fmt.Errorf("jpeg encode: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
