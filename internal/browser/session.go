// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/artifacts"
	"github.com/xkilldash9x/scalpel-e2e/internal/config"
)

const (
	// DefaultWaitTimeout applies when a wait is given no explicit timeout
	// and the configuration does not set one.
	DefaultWaitTimeout = 5 * time.Second
	// DefaultPageLoadTimeout bounds a single navigation.
	DefaultPageLoadTimeout = 60 * time.Second

	startupTimeout  = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

// Session owns one Chrome process and one tab. It is not safe for concurrent
// use; callers drive it sequentially.
type Session struct {
	id     string
	cfg    config.WebConfig
	device Device
	store  *artifacts.Store
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// NewSession launches Chrome with mobile emulation applied. The browser lives
// until Close is called or parent is canceled. Extra allocator options are
// appended after the ones derived from cfg.
func NewSession(parent context.Context, cfg config.WebConfig, store *artifacts.Store, logger *zap.Logger, extra ...chromedp.ExecAllocatorOption) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b := strings.ToLower(cfg.Browser); b != "" && b != "chrome" && b != "chromium" {
		return nil, fmt.Errorf("unsupported browser %q: only chrome is available", cfg.Browser)
	}
	if store == nil {
		store = artifacts.NewStore("")
	}

	id := uuid.NewString()
	log := logger.Named("browser").With(zap.String("session_id", id))
	device := ResolveDevice(cfg, log)

	opts := append(AllocatorOptions(cfg), extra...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Debugf),
	)

	s := &Session{
		id:          id,
		cfg:         cfg,
		device:      device,
		store:       store,
		logger:      log,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      cancel,
	}

	// 1. Start the browser. The first Run must use the tab context itself:
	// a derived timeout would bound the browser's lifetime.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-time.After(startupTimeout):
		_ = s.Close()
		return nil, fmt.Errorf("browser did not start within %v", startupTimeout)
	}

	// 2. Apply mobile emulation.
	emuCtx, emuCancel := context.WithTimeout(parent, s.DefaultTimeout())
	defer emuCancel()
	if err := s.Run(emuCtx, emulate(device)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to apply device emulation for %q: %w", device.Name, err)
	}

	log.Info("Browser session started.",
		zap.String("device", device.Name),
		zap.Bool("headless", cfg.Headless),
		zap.Int64("width", device.Width),
		zap.Int64("height", device.Height),
	)
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Device returns the emulation profile in effect.
func (s *Session) Device() Device { return s.device }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// DefaultTimeout is the wait timeout used when none is given.
func (s *Session) DefaultTimeout() time.Duration {
	if s.cfg.DefaultTimeout > 0 {
		return s.cfg.DefaultTimeout
	}
	return DefaultWaitTimeout
}

// Run executes actions on the session's tab, bounded by both the session
// lifetime and ctx.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && runCtx.Err() != nil {
		// Report the context that actually ended first.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.ctx.Err() != nil {
			return fmt.Errorf("browser session closed: %w", s.ctx.Err())
		}
		return runCtx.Err()
	}
	return err
}

// Navigate loads targetURL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, targetURL string) error {
	s.logger.Info("Navigating.", zap.String("url", targetURL))

	navTimeout := s.cfg.PageLoadTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultPageLoadTimeout
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	if err := s.Run(navCtx, chromedp.Navigate(targetURL)); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %v: %w", targetURL, navTimeout, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", targetURL, err)
	}
	return nil
}

// CurrentURL returns the tab's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.Run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return location, nil
}

// Screenshot captures the viewport as PNG and stores it under a timestamped
// name derived from name. It returns the written path.
func (s *Session) Screenshot(ctx context.Context, name string) (string, error) {
	var buf []byte
	if err := s.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	path, err := s.store.Write(name, "png", buf)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Saved screenshot.", zap.String("path", path))
	return path, nil
}

// Close terminates the browser. It is safe to call more than once; only the
// first call does any work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")

		// chromedp.Cancel blocks until the browser exits, so bound it.
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.ctx) }()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		case <-time.After(shutdownTimeout):
			s.logger.Warn("Browser shutdown timed out, forcing.", zap.Duration("timeout", shutdownTimeout))
		}

		s.cancel()
		s.allocCancel()
		s.logger.Info("Browser session closed.")
	})
	return s.closeErr
}
