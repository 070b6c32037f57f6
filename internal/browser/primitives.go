// internal/browser/primitives.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// waitFor runs a locator-scoped wait under its own timeout and converts an
// expired deadline into a *WaitTimeoutError. Cancellation of ctx is returned
// unchanged.
func (s *Session) waitFor(ctx context.Context, loc Locator, timeout time.Duration, condition string, build func(sel string, by chromedp.QueryOption) chromedp.Action) error {
	by, err := loc.by()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = s.DefaultTimeout()
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = s.Run(waitCtx, build(loc.Selector, by))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return &WaitTimeoutError{Locator: loc, Condition: condition, Timeout: timeout}
	default:
		return fmt.Errorf("waiting for %s to be %s: %w", loc, condition, err)
	}
}

// WaitVisible blocks until the first match of loc is rendered.
func (s *Session) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error {
	return s.waitFor(ctx, loc, timeout, "visible", func(sel string, by chromedp.QueryOption) chromedp.Action {
		return chromedp.WaitVisible(sel, by)
	})
}

// WaitClickable blocks until the first match of loc is visible and enabled.
func (s *Session) WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) error {
	return s.waitFor(ctx, loc, timeout, "clickable", func(sel string, by chromedp.QueryOption) chromedp.Action {
		return chromedp.Tasks{
			chromedp.WaitVisible(sel, by),
			chromedp.WaitEnabled(sel, by),
		}
	})
}

// Click waits for loc to become clickable and clicks it natively.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	s.logger.Debug("Clicking.", zap.Stringer("locator", loc))
	return s.waitFor(ctx, loc, 0, "clickable", func(sel string, by chromedp.QueryOption) chromedp.Action {
		return chromedp.Tasks{
			chromedp.WaitVisible(sel, by),
			chromedp.WaitEnabled(sel, by),
			chromedp.Click(sel, by, chromedp.NodeVisible),
		}
	})
}

// JSClick dispatches element.click() on the first match without waiting.
func (s *Session) JSClick(ctx context.Context, loc Locator) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	_, err := s.evalElement(ctx, loc, 0, "el.click();")
	return err
}

// Type waits for loc, clears it and sends text. Keys from chromedp/kb, such
// as kb.Enter, may be embedded in text.
func (s *Session) Type(ctx context.Context, loc Locator, text string) error {
	if err := s.WaitVisible(ctx, loc, 0); err != nil {
		return err
	}
	by, _ := loc.by()
	if err := s.Run(ctx,
		chromedp.Clear(loc.Selector, by),
		chromedp.SendKeys(loc.Selector, text, by),
	); err != nil {
		return fmt.Errorf("failed to type into %s: %w", loc, err)
	}
	return nil
}

// ScrollBy scrolls the window by (x, y) pixels.
func (s *Session) ScrollBy(ctx context.Context, x, y int) error {
	if err := s.Run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d);", x, y), nil)); err != nil {
		return fmt.Errorf("failed to scroll by (%d, %d): %w", x, y, err)
	}
	return nil
}

// ScrollByRepeat scrolls times times with a one second pause after each
// step, then blurs the focused element.
func (s *Session) ScrollByRepeat(ctx context.Context, x, y, times int) error {
	for i := 0; i < times; i++ {
		if err := s.ScrollBy(ctx, x, y); err != nil {
			return err
		}
		if err := s.Pause(ctx, time.Second, "Scrolling"); err != nil {
			return err
		}
	}
	return s.BlurActiveElement(ctx)
}

// ScrollIntoCenter centers the first match of loc in the viewport.
func (s *Session) ScrollIntoCenter(ctx context.Context, loc Locator) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	_, err := s.evalElement(ctx, loc, 0, "el.scrollIntoView({block: 'center', inline: 'center'});")
	return err
}

// BlurActiveElement removes focus from the focused element, if any.
func (s *Session) BlurActiveElement(ctx context.Context) error {
	if err := s.Run(ctx, chromedp.Evaluate("document.activeElement && document.activeElement.blur();", nil)); err != nil {
		return fmt.Errorf("failed to blur active element: %w", err)
	}
	return nil
}

// IsDisplayed reports whether the first match of loc is rendered. A missing
// element is simply not displayed.
func (s *Session) IsDisplayed(ctx context.Context, loc Locator) (bool, error) {
	if err := loc.Validate(); err != nil {
		return false, err
	}
	res, err := s.evalElement(ctx, loc, 0, `
  const st = window.getComputedStyle(el);
  const rect = el.getBoundingClientRect();
  value = st.display !== 'none' && st.visibility !== 'hidden' && parseFloat(st.opacity) !== 0 &&
    rect.width > 0 && rect.height > 0;`)
	if err != nil {
		if IsOptionalMiss(err) {
			return false, nil
		}
		return false, err
	}
	return res.Value, nil
}

// MaybeClick clicks loc if it becomes clickable within the default timeout.
// It reports whether the click happened. Only an expected miss is absorbed.
func (s *Session) MaybeClick(ctx context.Context, loc Locator) (bool, error) {
	err := s.Click(ctx, loc)
	if err == nil {
		return true, nil
	}
	if IsOptionalMiss(err) {
		s.logger.Debug("Optional element not clicked.", zap.Stringer("locator", loc), zap.Error(err))
		return false, nil
	}
	return false, err
}

// TapEmptySpace taps near the top-left corner of the viewport, which closes
// most menus and popovers.
func (s *Session) TapEmptySpace(ctx context.Context) error {
	if err := s.Run(ctx, chromedp.MouseClickXY(1, 1)); err != nil {
		return fmt.Errorf("failed to tap empty space: %w", err)
	}
	return nil
}

// ClickAndDrag presses at the center of the first match of loc, moves by
// (dx, dy) and releases.
func (s *Session) ClickAndDrag(ctx context.Context, loc Locator, dx, dy float64) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	res, err := s.evalElement(ctx, loc, 0, "")
	if err != nil {
		return err
	}
	x, y := res.X+res.Width/2, res.Y+res.Height/2

	err = s.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(input.Left).WithButtons(1).WithClickCount(1).Do(ctx); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MouseMoved, x+dx, y+dy).
			WithButton(input.Left).WithButtons(1).Do(ctx); err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseReleased, x+dx, y+dy).
			WithButton(input.Left).WithClickCount(1).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to drag %s by (%v, %v): %w", loc, dx, dy, err)
	}
	return nil
}

// FocusFirstVisible focuses the first element of loc that passes the
// viewport visibility check. It returns nil when none does.
func (s *Session) FocusFirstVisible(ctx context.Context, loc Locator) (*Element, error) {
	el, err := s.FirstVisibleInViewport(ctx, loc, DefaultVisibilityOptions())
	if err != nil {
		return nil, err
	}
	if el == nil {
		s.logger.Debug("No visible element to focus.", zap.Stringer("locator", loc))
		return nil, nil
	}
	if err := el.Focus(ctx); err != nil {
		return nil, err
	}
	return el, nil
}

// Pause sleeps for d unless ctx ends first.
func (s *Session) Pause(ctx context.Context, d time.Duration, reason string) error {
	s.logger.Info(reason, zap.Duration("timeout", d))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// evalElement runs body against the index-th match of loc.
func (s *Session) evalElement(ctx context.Context, loc Locator, index int, body string) (elementResult, error) {
	var res elementResult
	if err := s.Run(ctx, chromedp.Evaluate(elementScript(loc, index, body), &res)); err != nil {
		return res, fmt.Errorf("script on %s failed: %w", loc, err)
	}
	if !res.Found {
		return res, fmt.Errorf("%s[%d]: %w", loc, index, ErrElementNotFound)
	}
	return res, nil
}
