package sampler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegConfig holds configuration for the FFmpeg-backed decoder.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// FFprobePath is the path to the ffprobe binary.
	// If empty, "ffprobe" will be used.
	FFprobePath string
}

// DefaultFFmpegConfig returns an FFmpegConfig with defaults.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
	}
}

// FFmpegDecoder implements Decoder by shelling out to ffmpeg/ffprobe.
type FFmpegDecoder struct {
	config    FFmpegConfig
	inputPath string
}

// Compile-time verification that FFmpegDecoder implements Decoder.
var _ Decoder = (*FFmpegDecoder)(nil)

// NewFFmpegDecoder creates a decoder for one input file.
func NewFFmpegDecoder(inputPath string, cfg FFmpegConfig) (*FFmpegDecoder, error) {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpegConfig().FFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = DefaultFFmpegConfig().FFprobePath
	}

	if err := validateInput(inputPath); err != nil {
		return nil, err
	}

	return &FFmpegDecoder{
		config:    cfg,
		inputPath: inputPath,
	}, nil
}

// Duration probes the container duration in seconds via ffprobe.
func (d *FFmpegDecoder) Duration(ctx context.Context) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		d.inputPath,
	}

	cmd := exec.CommandContext(ctx, d.config.FFprobePath, args...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// FrameAt decodes a single frame. The seek happens before the input so
// ffmpeg uses keyframe seeking, which is fast and accurate enough for
// preview thumbnails.
func (d *FFmpegDecoder) FrameAt(ctx context.Context, offsetSeconds float64) (image.Image, error) {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", offsetSeconds),
		"-i", d.inputPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil // Discard stderr (FFmpeg outputs progress to stderr)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("frame capture cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode captured frame: %w", err)
	}
	return img, nil
}

// validateInput checks if the input file exists and is readable.
func validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}
