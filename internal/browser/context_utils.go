// internal/browser/context_utils.go
package browser

import (
	"context"
	"time"
)

// CombineContext creates a new context derived from ctx1 (the session context)
// that is canceled when either ctx1 or ctx2 (the operation context) is canceled.
// It inherits values from ctx1, which is where chromedp keeps its target.
// The deadline of ctx2 is carried over as well.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	var combinedCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx2.Deadline(); ok {
		combinedCtx, cancel = context.WithDeadline(ctx1, deadline)
	} else {
		combinedCtx, cancel = context.WithCancel(ctx1)
	}

	// The goroutine stops when either context is done.
	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}

// valueOnlyContext inherits values from its parent but ignores the parent's
// deadline and cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context that keeps ctx's values but is not canceled with it.
// Used for cleanup steps that must outlive the operation that triggered them.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
