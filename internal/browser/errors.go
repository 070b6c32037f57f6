// internal/browser/errors.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupportedLocatorStrategy marks a locator whose strategy this package cannot evaluate.
	ErrUnsupportedLocatorStrategy = errors.New("unsupported locator strategy")

	// ErrElementNotFound is returned when a locator resolves to no element at the moment of use.
	ErrElementNotFound = errors.New("element not found")
)

// WaitTimeoutError reports that a wait condition was not met in time.
// It unwraps to context.DeadlineExceeded.
type WaitTimeoutError struct {
	Locator   Locator
	Condition string
	Timeout   time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s to be %s", e.Timeout, e.Locator, e.Condition)
}

func (e *WaitTimeoutError) Unwrap() error { return context.DeadlineExceeded }

// IsOptionalMiss reports whether err is an expected outcome of a best-effort
// interaction: the target never appeared in time or was not present.
// Cancellation of the caller's context is never an optional miss.
func IsOptionalMiss(err error) bool {
	var timeout *WaitTimeoutError
	return errors.As(err, &timeout) || errors.Is(err, ErrElementNotFound)
}
