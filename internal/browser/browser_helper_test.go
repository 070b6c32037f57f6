// internal/browser/browser_helper_test.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scalpel-e2e/internal/artifacts"
	"github.com/xkilldash9x/scalpel-e2e/internal/config"
)

const (
	defaultBrowserTestTimeout = 90 * time.Second
	testCleanupGracePeriod    = 2 * time.Second
)

// testFixture is a running session plus the context bounding the test.
type testFixture struct {
	Session *Session
	Store   *artifacts.Store
	Logger  *zap.Logger
	RootCtx context.Context
}

// createTestConfig returns a headless configuration with short waits.
func createTestConfig() config.WebConfig {
	return config.WebConfig{
		BaseURL:         "http://localhost",
		Browser:         "chrome",
		Device:          "Pixel 5",
		Headless:        true,
		Width:           400,
		Height:          1000,
		DefaultTimeout:  500 * time.Millisecond,
		PageLoadTimeout: 30 * time.Second,
	}
}

// newTestFixture starts a browser session for one test. The test is skipped
// when Chrome is unavailable or -short is set.
func newTestFixture(t *testing.T, configurators ...func(*config.WebConfig)) *testFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in -short mode")
	}
	if _, ok := FindChrome(); !ok {
		t.Skip("no Chrome executable found; set " + ChromePathEnv + " to run browser tests")
	}

	logger := zaptest.NewLogger(t).With(zap.String("test", t.Name()))

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultBrowserTestTimeout)
	}
	rootCtx, rootCancel := context.WithDeadline(context.Background(), deadline.Add(-testCleanupGracePeriod))
	t.Cleanup(rootCancel) // LIFO: runs after the session is closed.

	cfg := createTestConfig()
	for _, configure := range configurators {
		configure(&cfg)
	}

	store := artifacts.NewStore(t.TempDir())
	session, err := NewSession(rootCtx, cfg, store, logger)
	require.NoError(t, err, "failed to start browser session")
	t.Cleanup(func() {
		if err := session.Close(); err != nil {
			t.Logf("Warning: error during browser session shutdown: %v", err)
		}
	})

	return &testFixture{Session: session, Store: store, Logger: logger, RootCtx: rootCtx}
}

// createStaticTestServer serves htmlContent at every path.
func createStaticTestServer(t *testing.T, htmlContent string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, htmlContent)
	}))
	t.Cleanup(server.Close)
	return server
}

// openPage serves htmlContent and navigates the fixture's session to it.
func (f *testFixture) openPage(t *testing.T, htmlContent string) {
	t.Helper()
	server := createStaticTestServer(t, htmlContent)
	require.NoError(t, f.Session.Navigate(f.RootCtx, server.URL))
}
