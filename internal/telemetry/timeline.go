package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const timelineStamp = "20060102_150405"

// Timeline appends timestamped checkpoint lines to a per-run log file so
// runs of different roles and parameter sets can be laid side by side.
// A nil *Timeline is valid and records nothing.
type Timeline struct {
	mu   sync.Mutex
	f    *os.File
	log  zerolog.Logger
	open time.Time
}

// OpenTimeline creates dir if needed and opens a fresh timeline file named
// <stamp>_<role>_time.log inside it.
func OpenTimeline(dir, role string, logger zerolog.Logger) (*Timeline, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create timeline dir %s: %w", dir, err)
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_time.log", now.Format(timelineStamp), role))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create timeline %s: %w", path, err)
	}
	return &Timeline{
		f:    f,
		log:  logger.With().Str("component", "telemetry").Str("timeline", path).Logger(),
		open: now,
	}, nil
}

// Mark records one checkpoint with the wall time and the offset since the
// timeline was opened.
func (t *Timeline) Mark(event string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return
	}
	now := time.Now()
	line := fmt.Sprintf("%s +%s %s\n",
		now.Format("2006-01-02 15:04:05.000000"),
		now.Sub(t.open).Round(time.Microsecond),
		event)
	if _, err := t.f.WriteString(line); err != nil {
		t.log.Warn().Err(err).Str("event", event).Msg("write timeline entry")
	}
}

// Markf is Mark with formatting.
func (t *Timeline) Markf(format string, args ...any) {
	if t == nil {
		return
	}
	t.Mark(fmt.Sprintf(format, args...))
}

// Close flushes and closes the underlying file.
func (t *Timeline) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}
