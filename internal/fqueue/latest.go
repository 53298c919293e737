package fqueue

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Stream files carry a YYYYMMDD_HHMMSS prefix; the latest one sorts last.
var stampPattern = regexp.MustCompile(`^\d{8}_\d{6}`)

// LatestFile returns the path of the newest timestamp-prefixed file in dir.
// An empty path with a nil error means no matching file exists yet; callers
// treat that as "nothing to do", not as a failure.
func LatestFile(dir string) (string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("list %s: %w", dir, err)
	}

	var latest, latestStamp string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		stamp := stampPattern.FindString(e.Name())
		if stamp == "" {
			continue
		}
		if stamp > latestStamp || (stamp == latestStamp && e.Name() > filepath.Base(latest)) {
			latestStamp = stamp
			latest = filepath.Join(dir, e.Name())
		}
	}
	return latest, nil
}
