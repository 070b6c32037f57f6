// internal/browser/visibility.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// VisibilityOptions tunes FirstVisibleInViewport.
type VisibilityOptions struct {
	// MinRatio is the fraction of the element's height that must lie inside
	// the usable viewport.
	MinRatio float64
	// TopMargin excludes a fixed header, in CSS pixels.
	TopMargin int
	// BottomMargin excludes a fixed footer, in CSS pixels.
	BottomMargin int
}

// DefaultVisibilityOptions returns a 0.5 ratio under a 90px header.
func DefaultVisibilityOptions() VisibilityOptions {
	return VisibilityOptions{MinRatio: 0.5, TopMargin: 90, BottomMargin: 0}
}

// firstVisibleJS returns the index, in document order, of the first element
// that is rendered, at least ratio visible between the margins, and not
// covered at the midpoint of its visible part. It returns -1 otherwise.
const firstVisibleJS = `(function(resolveAll, strategy, sel, ratio, topM, bottomM) {
  const vh = window.innerHeight || document.documentElement.clientHeight;
  const els = resolveAll(strategy, sel);
  function visible(el) {
    const r = el.getBoundingClientRect();
    const styles = window.getComputedStyle(el);
    if (styles.display === 'none' || styles.visibility === 'hidden' || parseFloat(styles.opacity) === 0) return false;

    const top    = Math.max(r.top, topM);
    const bottom = Math.min(r.bottom, vh - bottomM);
    const visH   = Math.max(0, bottom - top);
    const height = Math.max(1, r.height);

    if (visH / height < ratio) return false;

    // Occlusion: probe the center of the visible part.
    const x = Math.floor(r.left + r.width / 2);
    const y = Math.floor(top + Math.min(visH, height) / 2);
    const e = document.elementFromPoint(x, y);
    return !!e && (el === e || el.contains(e));
  }
  return els.findIndex(visible);
})(%s, %s, %s, %s, %d, %d)`

// FirstVisibleInViewport returns the first match of loc that is actually
// visible to the user, or nil when nothing qualifies. It does not modify the
// page.
func (s *Session) FirstVisibleInViewport(ctx context.Context, loc Locator, opts VisibilityOptions) (*Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	script := fmt.Sprintf(firstVisibleJS,
		resolveAllJS,
		jsString(string(loc.Strategy)),
		jsString(loc.Selector),
		jsFloat(opts.MinRatio),
		opts.TopMargin,
		opts.BottomMargin,
	)

	index := -1
	if err := s.Run(ctx, chromedp.Evaluate(script, &index)); err != nil {
		return nil, fmt.Errorf("visibility check for %s failed: %w", loc, err)
	}
	if index < 0 {
		return nil, nil
	}

	s.logger.Debug("Found visible element.", zap.Stringer("locator", loc), zap.Int("index", index))
	return &Element{session: s, Locator: loc, Index: index}, nil
}

// Element is the Index-th match of Locator in document order.
type Element struct {
	session *Session
	Locator Locator
	Index   int
}

func (e *Element) String() string {
	return fmt.Sprintf("%s[%d]", e.Locator, e.Index)
}

// Click performs a native click at the center of the element.
func (e *Element) Click(ctx context.Context) error {
	res, err := e.session.evalElement(ctx, e.Locator, e.Index, "")
	if err != nil {
		return err
	}
	x, y := res.X+res.Width/2, res.Y+res.Height/2
	if err := e.session.Run(ctx, chromedp.MouseClickXY(x, y)); err != nil {
		return fmt.Errorf("failed to click %s: %w", e, err)
	}
	return nil
}

// JSClick dispatches element.click().
func (e *Element) JSClick(ctx context.Context) error {
	_, err := e.session.evalElement(ctx, e.Locator, e.Index, "el.click();")
	return err
}

// Focus moves keyboard focus to the element.
func (e *Element) Focus(ctx context.Context) error {
	_, err := e.session.evalElement(ctx, e.Locator, e.Index, "el.focus();")
	return err
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	script := fmt.Sprintf(`(function() {
  const el = (%s)(%s, %s)[%d];
  return el ? {found: true, text: el.innerText} : {found: false};
})()`, resolveAllJS, jsString(string(e.Locator.Strategy)), jsString(e.Locator.Selector), e.Index)

	var res struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := e.session.Run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", e, err)
	}
	if !res.Found {
		return "", fmt.Errorf("%s: %w", e, ErrElementNotFound)
	}
	return res.Text, nil
}
