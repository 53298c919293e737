package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"transpipe/internal/fqueue"
	"transpipe/internal/telemetry"
)

// DrainOptions control what happens to a queue file after a bulk replay.
type DrainOptions struct {
	// RemoveAfterSend truncates the file once it has been fully drained,
	// so a second replay sends nothing.
	RemoveAfterSend bool
	// ArchiveDrained writes a compressed copy under an archive/
	// subdirectory before any truncation. The copy lives outside the
	// latest-file lookup so it can never shadow a live queue file.
	ArchiveDrained bool
}

// DrainFile replays every frame of a completed queue file through the
// transport in file order and closes the stream with an END marker.
// Returns the number of items sent.
//
// Draining the same untouched file twice sends the same sequence twice;
// receivers must tolerate duplicates.
func DrainFile(q *fqueue.Queue, sender Sender, endpoint, path string, opts DrainOptions, m *telemetry.Metrics, logger zerolog.Logger) (int, error) {
	log := logger.With().Str("component", "replay").Str("path", path).Logger()

	reader, err := q.Open(path)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	sent := 0
	for {
		payload, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			m.CorruptFrames.Inc()
			return sent, fmt.Errorf("drain %s: %w", path, err)
		}
		if err := sender.Send(endpoint, payload); err != nil {
			log.Error().Err(err).Int("sent", sent).Msg("send drained item")
			continue
		}
		m.ItemsSent.Inc()
		m.BytesSent.Add(float64(len(payload)))
		sent++
	}

	if err := sender.SendEnd(endpoint); err != nil {
		return sent, fmt.Errorf("drain %s: end marker: %w", path, err)
	}
	log.Info().Int("sent", sent).Msg("file drained")

	if opts.ArchiveDrained {
		if err := archiveFile(path); err != nil {
			log.Error().Err(err).Msg("archive drained file")
		}
	}
	if opts.RemoveAfterSend {
		if err := q.Truncate(path); err != nil {
			log.Error().Err(err).Msg("truncate drained file")
		}
	}
	return sent, nil
}

// archiveFile writes a zstd copy of path to <dir>/archive/<name>.zst.
func archiveFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(raw, nil)

	dir := filepath.Join(filepath.Dir(path), "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	dst := filepath.Join(dir, filepath.Base(path)+".zst")
	if err := os.WriteFile(dst, compressed, 0o644); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}
