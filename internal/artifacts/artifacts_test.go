// internal/artifacts/artifacts_test.go
package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampedPath(t *testing.T) {
	at := time.Date(2024, 3, 9, 17, 4, 5, 123456000, time.FixedZone("CET", 3600))

	got := TimestampedPath("/tmp/out", "test_search_and_open_streamer", "png", at)
	assert.Equal(t, "/tmp/out/test_search_and_open_streamer-20240309-160405.123456.png", got)

	// A leading dot on the extension is tolerated.
	assert.Equal(t, got, TimestampedPath("/tmp/out", "test_search_and_open_streamer", ".png", at))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"TestWeb/search and open": "TestWeb_search_and_open",
		"  plain  ":               "plain",
		"///":                     "artifact",
		"":                        "artifact",
		"keep.dots-and_dashes":    "keep.dots-and_dashes",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestStore_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	store := NewStore(dir)
	store.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	path, err := store.Write("shot", "png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shot-20240102-030405.000000.png"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestStore_LogFilePath(t *testing.T) {
	store := NewStore("logs")
	start := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	assert.Equal(t, filepath.Join("logs", "e2e-20240102-030405.000006.log"), store.LogFilePath(start))
}

func TestNewStore_EmptyDirDefaultsToCwd(t *testing.T) {
	assert.Equal(t, ".", NewStore("").Dir())
}
