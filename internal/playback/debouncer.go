// Package playback provides the client-resident progress tracking
// components a playback session embeds: a debouncer that coalesces raw
// time updates into infrequent persistence calls, and an HTTP reporter
// that delivers them to the progress endpoint.
package playback

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Sink persists one debounced progress flush.
type Sink interface {
	Flush(ctx context.Context, assetID string, percent int) error
}

// Session states. All transitions happen under the session mutex, so the
// machine behaves as if driven by one logical timeline.
type state int

const (
	stateIdle state = iota
	stateTracking
	stateFlushing
	stateClosed
)

// DebouncerConfig holds tuning for a progress debouncer.
type DebouncerConfig struct {
	// QuietPeriod is how long the event stream must be quiet before a
	// pending flush fires. Each new event restarts it.
	QuietPeriod time.Duration

	// Threshold is the minimum percent delta from the last saved value
	// before a flush is scheduled. Bounds write volume.
	Threshold int

	// FlushTimeout bounds each sink call.
	FlushTimeout time.Duration
}

// DefaultDebouncerConfig returns the default configuration.
func DefaultDebouncerConfig() DebouncerConfig {
	return DebouncerConfig{
		QuietPeriod:  2 * time.Second,
		Threshold:    5,
		FlushTimeout: 10 * time.Second,
	}
}

// Debouncer coalesces playback time updates for one (session, asset)
// pair into throttled, idempotent flushes, with one guaranteed
// fire-and-forget flush on teardown. Sessions are independent; two
// sessions for the same asset may race at the persistence endpoint and
// are resolved there by upsert semantics.
type Debouncer struct {
	assetID string
	sink    Sink
	cfg     DebouncerConfig

	mu        sync.Mutex
	state     state
	timer     *time.Timer
	pending   int
	hasEvents bool
	lastSaved int
}

// NewDebouncer creates a debouncer for one playback session.
func NewDebouncer(assetID string, sink Sink, cfg DebouncerConfig) *Debouncer {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = DefaultDebouncerConfig().QuietPeriod
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultDebouncerConfig().Threshold
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultDebouncerConfig().FlushTimeout
	}
	return &Debouncer{
		assetID: assetID,
		sink:    sink,
		cfg:     cfg,
		state:   stateIdle,
	}
}

// Observe handles one raw time-update event. Events arriving before the
// media duration is known are discarded. A flush is scheduled once the
// percent has moved at least Threshold away from the last saved value,
// and fires only after the event stream has been quiet for QuietPeriod;
// every new event restarts that timer.
func (d *Debouncer) Observe(currentTime, duration float64) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return
	}

	percent := int(math.Floor(currentTime / duration * 100))
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == stateClosed {
		return
	}
	if d.state == stateIdle {
		d.state = stateTracking
	}

	d.pending = percent
	d.hasEvents = true

	if d.timer != nil {
		// Quiet period restarts on every event.
		d.timer.Stop()
		d.timer = time.AfterFunc(d.cfg.QuietPeriod, d.quietElapsed)
		return
	}

	if abs(percent-d.lastSaved) >= d.cfg.Threshold {
		d.timer = time.AfterFunc(d.cfg.QuietPeriod, d.quietElapsed)
	}
}

// quietElapsed fires when the stream has been quiet for a full period.
func (d *Debouncer) quietElapsed() {
	d.mu.Lock()
	if d.state == stateClosed || d.state == stateFlushing {
		d.mu.Unlock()
		return
	}
	d.state = stateFlushing
	d.timer = nil
	percent := d.pending
	d.mu.Unlock()

	d.flush(percent)

	d.mu.Lock()
	if d.state == stateFlushing {
		d.state = stateTracking
	}
	d.mu.Unlock()
}

// Close tears the session down: the pending timer is cancelled first so
// no stale flush runs afterwards, then one final flush with the last
// known percent is dispatched regardless of the threshold and without
// waiting for the quiet period. The dispatch is best-effort and does not
// block teardown; its result is intentionally discarded.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.state == stateClosed {
		d.mu.Unlock()
		return
	}
	d.state = stateClosed
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	percent := d.pending
	hasEvents := d.hasEvents
	d.mu.Unlock()

	if !hasEvents {
		return
	}

	go d.flush(percent)
}

// flush delivers one percent value to the sink. Progress persistence is
// an enhancement, not a correctness-critical path: failures are logged
// and swallowed.
func (d *Debouncer) flush(percent int) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.FlushTimeout)
	defer cancel()

	if err := d.sink.Flush(ctx, d.assetID, percent); err != nil {
		slog.Warn("progress flush failed",
			"asset_id", d.assetID,
			"percent", percent,
			"error", err,
		)
		return
	}

	d.mu.Lock()
	d.lastSaved = percent
	d.mu.Unlock()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
