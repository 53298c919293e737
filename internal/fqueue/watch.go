package fqueue

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// AwaitLatest blocks until a timestamp-prefixed file exists in dir and
// returns its path. It is the waiting form of LatestFile for roles that may
// start before their upstream has produced anything.
func AwaitLatest(ctx context.Context, dir string, logger zerolog.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create watch directory: %w", err)
	}

	// Fast path before paying for a watcher.
	if path, err := LatestFile(dir); err != nil || path != "" {
		return path, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return "", fmt.Errorf("watch %s: %w", dir, err)
	}

	// Re-check after the watch is in place; the file may have landed in the
	// window between LatestFile and watcher.Add.
	if path, err := LatestFile(dir); err != nil || path != "" {
		return path, err
	}

	logger.Info().Str("dir", dir).Msg("waiting for input file")

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return "", fmt.Errorf("watcher closed while waiting on %s", dir)
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path, err := LatestFile(dir)
			if err != nil {
				return "", err
			}
			if path != "" {
				return path, nil
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return "", fmt.Errorf("watcher closed while waiting on %s", dir)
			}
			logger.Warn().Err(werr).Str("dir", dir).Msg("watch error")
		}
	}
}
