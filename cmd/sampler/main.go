// Command sampler extracts evenly spaced preview frames from a media
// file and writes them to stdout as a JSON array of JPEG data URLs,
// ready to attach to an upload request.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/sampler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		input   = flag.String("input", "", "path to the media file (required)")
		count   = flag.Int("count", sampler.DefaultConfig().Count, "number of preview frames to capture")
		quality = flag.Int("quality", sampler.DefaultConfig().JPEGQuality, "JPEG encoder quality, 1-100")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall capture deadline")
		ffmpeg  = flag.String("ffmpeg", "", "path to the ffmpeg binary (default: ffmpeg in PATH)")
		ffprobe = flag.String("ffprobe", "", "path to the ffprobe binary (default: ffprobe in PATH)")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		return fmt.Errorf("-input is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, *timeout)
	defer timeoutCancel()

	decoder, err := sampler.NewFFmpegDecoder(*input, sampler.FFmpegConfig{
		FFmpegPath:  *ffmpeg,
		FFprobePath: *ffprobe,
	})
	if err != nil {
		return err
	}

	s := sampler.New(decoder, sampler.Config{
		Count:       *count,
		JPEGQuality: *quality,
	})

	start := time.Now()
	frames, err := s.Sample(ctx)
	if err != nil {
		return fmt.Errorf("sample %s: %w", *input, err)
	}
	logger.Info("captured preview frames",
		slog.String("input", *input),
		slog.Int("frames", len(frames)),
		slog.Duration("elapsed", time.Since(start)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frames); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
