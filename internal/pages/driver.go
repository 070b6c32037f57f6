// internal/pages/driver.go
package pages

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/browser"
)

// Driver is the part of *browser.Session the page objects rely on.
type Driver interface {
	Navigate(ctx context.Context, targetURL string) error
	WaitVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) error
	Click(ctx context.Context, loc browser.Locator) error
	JSClick(ctx context.Context, loc browser.Locator) error
	MaybeClick(ctx context.Context, loc browser.Locator) (bool, error)
	Type(ctx context.Context, loc browser.Locator, text string) error
	BlurActiveElement(ctx context.Context) error
	ScrollByRepeat(ctx context.Context, x, y, times int) error
	FocusFirstVisible(ctx context.Context, loc browser.Locator) (*browser.Element, error)
}

var _ Driver = (*browser.Session)(nil)

// bestEffort absorbs the expected misses of an optional interaction and
// returns every other error.
func bestEffort(logger *zap.Logger, what string, err error) error {
	if err == nil {
		return nil
	}
	if browser.IsOptionalMiss(err) {
		logger.Debug("Optional UI not present.", zap.String("step", what), zap.Error(err))
		return nil
	}
	return err
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.Named(name)
}
