// File: internal/artifacts/artifacts.go
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the UTC suffix appended to every artifact name.
const TimestampLayout = "20060102-150405.000000"

// unsafeChars matches anything we do not want in a file name.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes run outputs (screenshots, logs) beneath a single directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the root directory if needed.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifacts directory '%s': %w", s.dir, err)
	}
	return nil
}

// Path returns a new timestamped path for the named artifact.
func (s *Store) Path(name, ext string) string {
	return TimestampedPath(s.dir, name, ext, s.now())
}

// Write stores data under a fresh timestamped name and returns the path.
func (s *Store) Write(name, ext string, data []byte) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	path := s.Path(name, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact '%s': %w", path, err)
	}
	return path, nil
}

// LogFilePath returns the path of the run log for the given start time.
func (s *Store) LogFilePath(start time.Time) string {
	return TimestampedPath(s.dir, "e2e", "log", start)
}

// TimestampedPath builds "<dir>/<name>-<UTC timestamp>.<ext>".
func TimestampedPath(dir, name, ext string, at time.Time) string {
	name = SanitizeName(name)
	ext = strings.TrimPrefix(ext, ".")
	file := fmt.Sprintf("%s-%s", name, at.UTC().Format(TimestampLayout))
	if ext != "" {
		file += "." + ext
	}
	return filepath.Join(dir, file)
}

// SanitizeName turns a test or step name into a safe file name stem.
// Go subtest separators become underscores.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "artifact"
	}
	return name
}
