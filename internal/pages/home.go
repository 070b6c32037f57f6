// internal/pages/home.go
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/browser"
)

// Home page locators.
var (
	SearchIcon          = browser.XPath("//a[@href='/directory']/div/div")
	AcceptCookiesButton = browser.XPath("//button[@data-a-target='consent-banner-accept']")
	// The "continue in the app" modal has two parts: the sheet and its close button.
	TransitionToAppOverlay = browser.XPath("//div[@class='ScReactModalBase-sc-26ijes-0 foAhuv tw-modal-layer']//div[@class='Layout-sc-1xcs6mc-0 cBrePX']")
	CloseOverlayButton     = browser.XPath("//div[@class='ScReactModalBase-sc-26ijes-0 foAhuv tw-modal-layer']//button[@class='InjectLayout-sc-1i43xsx-0 ccdBQN']")
)

// overlayProbeTimeout is how long OpenSearch looks for the app overlay.
const overlayProbeTimeout = 2 * time.Second

// HomePage is the landing screen.
type HomePage struct {
	driver Driver
	logger *zap.Logger
}

// NewHomePage binds the page to a driver.
func NewHomePage(driver Driver, logger *zap.Logger) *HomePage {
	return &HomePage{driver: driver, logger: named(logger, "pages.home")}
}

// Open navigates to the site root.
func (p *HomePage) Open(ctx context.Context, baseURL string) error {
	target := strings.TrimRight(baseURL, "/") + "/"
	if err := p.driver.Navigate(ctx, target); err != nil {
		return fmt.Errorf("failed to open home page: %w", err)
	}
	return nil
}

// OpenSearch taps the search icon and closes the app overlay if it pops up.
func (p *HomePage) OpenSearch(ctx context.Context) error {
	if err := p.driver.Click(ctx, SearchIcon); err != nil {
		return fmt.Errorf("failed to open search: %w", err)
	}
	return p.dismissTransitionToAppOverlay(ctx)
}

// ConfirmCookiesIfShown accepts the consent banner when it is displayed.
func (p *HomePage) ConfirmCookiesIfShown(ctx context.Context) error {
	if err := p.driver.WaitVisible(ctx, AcceptCookiesButton, 0); err != nil {
		return bestEffort(p.logger, "cookie banner", err)
	}
	clicked, err := p.driver.MaybeClick(ctx, AcceptCookiesButton)
	if err != nil {
		return err
	}
	if clicked {
		p.logger.Info("Accepted cookie banner.")
	}
	return nil
}

func (p *HomePage) dismissTransitionToAppOverlay(ctx context.Context) error {
	err := p.driver.WaitVisible(ctx, TransitionToAppOverlay, overlayProbeTimeout)
	if err != nil {
		return bestEffort(p.logger, "app overlay", err)
	}
	if err := p.driver.JSClick(ctx, CloseOverlayButton); err != nil {
		return bestEffort(p.logger, "app overlay close", err)
	}
	p.logger.Info("Dismissed app overlay.")
	return nil
}
