// internal/pages/search.go
package pages

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/browser"
)

// Search page locators.
var (
	SearchInput = browser.CSS("input[type='search'], input[aria-label='Search']")
	FirstResult = browser.XPath("//section//a[starts-with(@href, '/videos/')] | " +
		"//section//button[@class='ScCoreLink-sc-16kq0mq-0 cZfgmJ InjectLayout-sc-1i43xsx-0 ggvZjN tw-link']")
)

// DefaultScrollStep is the vertical distance of one results scroll.
const DefaultScrollStep = 700

// SearchPage is the directory/search screen.
type SearchPage struct {
	driver Driver
	logger *zap.Logger
}

// NewSearchPage binds the page to a driver.
func NewSearchPage(driver Driver, logger *zap.Logger) *SearchPage {
	return &SearchPage{driver: driver, logger: named(logger, "pages.search")}
}

// Search submits query and drops focus so the on-screen keyboard closes.
func (p *SearchPage) Search(ctx context.Context, query string) error {
	p.logger.Info("Searching.", zap.String("query", query))
	if err := p.driver.Type(ctx, SearchInput, query+kb.Enter); err != nil {
		return fmt.Errorf("failed to search for %q: %w", query, err)
	}
	return p.driver.BlurActiveElement(ctx)
}

// ScrollResults scrolls the results down times times.
func (p *SearchPage) ScrollResults(ctx context.Context, times int) error {
	return p.driver.ScrollByRepeat(ctx, 0, DefaultScrollStep, times)
}

// OpenFirstStreamer clicks the first result the user can actually see.
func (p *SearchPage) OpenFirstStreamer(ctx context.Context) error {
	if err := p.driver.WaitVisible(ctx, FirstResult, 0); err != nil {
		return fmt.Errorf("no search results: %w", err)
	}
	el, err := p.driver.FocusFirstVisible(ctx, FirstResult)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("no search result inside the viewport: %w", browser.ErrElementNotFound)
	}
	p.logger.Info("Opening result.", zap.Stringer("element", el))
	return el.Click(ctx)
}
