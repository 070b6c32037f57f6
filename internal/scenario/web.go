// internal/scenario/web.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/pages"
)

// DefaultQuery is the search term used by the mobile flow.
const DefaultQuery = "StarCraft II"

// SearchAndOpenStreamerName names the flow in logs and artifacts.
const SearchAndOpenStreamerName = "test_search_and_open_streamer"

// Browser is what the web flows need from a browser session.
type Browser interface {
	pages.Driver
	Screenshot(ctx context.Context, name string) (string, error)
	CurrentURL(ctx context.Context) (string, error)
}

// WebResult summarizes a completed web flow.
type WebResult struct {
	StreamerURL string
	Screenshot  string
	Elapsed     time.Duration
}

// Web runs the mobile-web flows against one browser session.
type Web struct {
	browser  Browser
	home     *pages.HomePage
	search   *pages.SearchPage
	streamer *pages.StreamerPage
	logger   *zap.Logger
}

// NewWeb builds the page objects over b.
func NewWeb(b Browser, logger *zap.Logger) *Web {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Web{
		browser:  b,
		home:     pages.NewHomePage(b, logger),
		search:   pages.NewSearchPage(b, logger),
		streamer: pages.NewStreamerPage(b, logger),
		logger:   logger.Named("scenario.web"),
	}
}

// SearchAndOpenStreamer searches for query from the home page, opens the
// first visible result and captures a screenshot of the channel.
func (w *Web) SearchAndOpenStreamer(ctx context.Context, baseURL, query string) (*WebResult, error) {
	start := time.Now()
	log := w.logger.With(zap.String("flow", SearchAndOpenStreamerName), zap.String("query", query))
	log.Info("Starting flow.", zap.String("base_url", baseURL))

	// 1. Open home and clear the consent banner.
	if err := w.home.Open(ctx, baseURL); err != nil {
		return nil, err
	}
	if err := w.home.ConfirmCookiesIfShown(ctx); err != nil {
		return nil, err
	}

	// 2. Tap the search icon.
	if err := w.home.OpenSearch(ctx); err != nil {
		return nil, err
	}

	// 3. Type the query.
	if err := w.search.Search(ctx, query); err != nil {
		return nil, err
	}

	// 4. Scroll down twice.
	if err := w.search.ScrollResults(ctx, 2); err != nil {
		return nil, err
	}

	// 5. Open a streamer.
	if err := w.search.OpenFirstStreamer(ctx); err != nil {
		return nil, err
	}

	// 6. Wait for the channel to load.
	if err := w.streamer.EnsureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("streamer page did not load: %w", err)
	}

	// 7. Screenshot.
	path, err := w.browser.Screenshot(ctx, SearchAndOpenStreamerName)
	if err != nil {
		return nil, err
	}

	current, err := w.browser.CurrentURL(ctx)
	if err != nil {
		return nil, err
	}

	result := &WebResult{StreamerURL: current, Screenshot: path, Elapsed: time.Since(start)}
	log.Info("Flow complete.",
		zap.String("streamer_url", result.StreamerURL),
		zap.String("screenshot", result.Screenshot),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}
