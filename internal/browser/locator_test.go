// internal/browser/locator_test.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocator_Validate(t *testing.T) {
	assert.NoError(t, CSS("button").Validate())
	assert.NoError(t, XPath("//button").Validate())

	err := Locator{Strategy: "link text", Selector: "Home"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLocatorStrategy)
	assert.Contains(t, err.Error(), "link text")
}

func TestLocator_By(t *testing.T) {
	by, err := CSS("a").by()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%p", chromedp.ByQuery), fmt.Sprintf("%p", by))

	by, err = XPath("//a").by()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%p", chromedp.BySearch), fmt.Sprintf("%p", by))
}

func TestLocator_String(t *testing.T) {
	assert.Equal(t, `xpath("//a[@href='/directory']")`, XPath("//a[@href='/directory']").String())
}

// Unsupported strategies fail before any browser round trip, so a zero
// Session without a browser is enough here.
func TestUnsupportedStrategy_FailsFast(t *testing.T) {
	s := &Session{logger: zap.NewNop()}
	loc := Locator{Strategy: "id", Selector: "main"}
	ctx := context.Background()

	_, err := s.FirstVisibleInViewport(ctx, loc, DefaultVisibilityOptions())
	assert.ErrorIs(t, err, ErrUnsupportedLocatorStrategy)

	checks := map[string]func() error{
		"WaitVisible":       func() error { return s.WaitVisible(ctx, loc, time.Second) },
		"WaitClickable":     func() error { return s.WaitClickable(ctx, loc, time.Second) },
		"Click":             func() error { return s.Click(ctx, loc) },
		"JSClick":           func() error { return s.JSClick(ctx, loc) },
		"Type":              func() error { return s.Type(ctx, loc, "x") },
		"ScrollIntoCenter":  func() error { return s.ScrollIntoCenter(ctx, loc) },
		"ClickAndDrag":      func() error { return s.ClickAndDrag(ctx, loc, 0, 300) },
		"IsDisplayed":       func() error { _, err := s.IsDisplayed(ctx, loc); return err },
		"MaybeClick":        func() error { _, err := s.MaybeClick(ctx, loc); return err },
		"FocusFirstVisible": func() error { _, err := s.FocusFirstVisible(ctx, loc); return err },
	}
	for name, check := range checks {
		assert.ErrorIs(t, check(), ErrUnsupportedLocatorStrategy, name)
	}
}

func TestWaitTimeoutError(t *testing.T) {
	err := error(&WaitTimeoutError{Locator: CSS("#x"), Condition: "visible", Timeout: 2 * time.Second})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, `timed out after 2s waiting for css selector("#x") to be visible`, err.Error())

	wrapped := fmt.Errorf("opening search: %w", err)
	var timeout *WaitTimeoutError
	require.True(t, errors.As(wrapped, &timeout))
	assert.Equal(t, "visible", timeout.Condition)
}

func TestIsOptionalMiss(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", &WaitTimeoutError{Locator: CSS("a")}, true},
		{"wrapped timeout", fmt.Errorf("x: %w", &WaitTimeoutError{Locator: CSS("a")}), true},
		{"not found", fmt.Errorf("y: %w", ErrElementNotFound), true},
		{"cancelled", context.Canceled, false},
		{"raw deadline", context.DeadlineExceeded, false},
		{"unsupported", ErrUnsupportedLocatorStrategy, false},
		{"other", errors.New("cdp: target closed"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOptionalMiss(tt.err))
		})
	}
}

func TestPause(t *testing.T) {
	s := &Session{logger: zap.NewNop()}

	start := time.Now()
	require.NoError(t, s.Pause(context.Background(), 20*time.Millisecond, "settle"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Pause(ctx, time.Hour, "never finishes")
	assert.ErrorIs(t, err, context.Canceled)
}
