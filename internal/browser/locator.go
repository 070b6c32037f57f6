// internal/browser/locator.go
package browser

import (
	"fmt"

	"github.com/chromedp/chromedp"
)

// Strategy names how a Locator's selector is interpreted.
type Strategy string

const (
	// ByCSS matches with document.querySelectorAll.
	ByCSS Strategy = "css selector"
	// ByXPath matches with document.evaluate over the whole document.
	ByXPath Strategy = "xpath"
)

// Locator identifies zero or more elements of the rendered document.
type Locator struct {
	Strategy Strategy
	Selector string
}

// CSS returns a CSS selector locator.
func CSS(selector string) Locator { return Locator{Strategy: ByCSS, Selector: selector} }

// XPath returns an XPath locator.
func XPath(expr string) Locator { return Locator{Strategy: ByXPath, Selector: expr} }

func (l Locator) String() string {
	return fmt.Sprintf("%s(%q)", l.Strategy, l.Selector)
}

// Validate fails for strategies outside the supported set.
func (l Locator) Validate() error {
	switch l.Strategy {
	case ByCSS, ByXPath:
		return nil
	default:
		return fmt.Errorf("%w: %q (selector %q)", ErrUnsupportedLocatorStrategy, string(l.Strategy), l.Selector)
	}
}

// by maps the locator onto chromedp's selector option. XPath goes through
// DOM.performSearch, which evaluates XPath expressions.
func (l Locator) by() (chromedp.QueryOption, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Strategy == ByXPath {
		return chromedp.BySearch, nil
	}
	return chromedp.ByQuery, nil
}
