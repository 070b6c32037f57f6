// internal/pages/streamer.go
package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/browser"
)

// Streamer page locators.
var (
	// DismissLocators cover consent, mature-content and login prompts.
	DismissLocators = []browser.Locator{
		browser.CSS("button[aria-label='Close'], button[aria-label='Dismiss']"),
		browser.CSS("button:has(svg[aria-label='Close'])"),
		browser.CSS("button[data-a-target='consent-banner-accept'], button[aria-label*='Accept']"),
		browser.XPath("//button[contains(., 'Continue')] | //a[contains(., 'Continue')]"),
	}
	VideoPlayer   = browser.CSS("video, div[data-a-target='video-player'], div[class*='player']")
	ChannelHeader = browser.CSS("header, h1, h2")
)

// StreamerPage is a channel screen.
type StreamerPage struct {
	driver Driver
	logger *zap.Logger
}

// NewStreamerPage binds the page to a driver.
func NewStreamerPage(driver Driver, logger *zap.Logger) *StreamerPage {
	return &StreamerPage{driver: driver, logger: named(logger, "pages.streamer")}
}

// EnsureLoaded closes any popups, then waits for the player or, failing
// that, the channel header. The header wait's error is returned as is.
func (p *StreamerPage) EnsureLoaded(ctx context.Context) error {
	for _, loc := range DismissLocators {
		clicked, err := p.driver.MaybeClick(ctx, loc)
		if err != nil {
			return err
		}
		if clicked {
			p.logger.Info("Dismissed popup.", zap.Stringer("locator", loc))
		}
	}

	err := p.driver.WaitVisible(ctx, VideoPlayer, 0)
	if err == nil {
		return nil
	}
	if !browser.IsOptionalMiss(err) {
		return err
	}
	p.logger.Debug("Video player not visible, checking channel header.", zap.Error(err))
	return p.driver.WaitVisible(ctx, ChannelHeader, 0)
}
