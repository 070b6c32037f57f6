// internal/browser/devices.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/config"
)

// Device describes the emulated handset. It satisfies chromedp.Device.
type Device struct {
	Name       string
	Width      int64
	Height     int64
	PixelRatio float64
	UserAgent  string
	Mobile     bool
	Touch      bool
}

// Device implements chromedp.Device.
func (d Device) Device() device.Info {
	return device.Info{
		Name:      d.Name,
		UserAgent: d.UserAgent,
		Width:     d.Width,
		Height:    d.Height,
		Scale:     d.PixelRatio,
		Mobile:    d.Mobile,
		Touch:     d.Touch,
	}
}

// genericMobileUA is sent when the configured device is unknown.
const genericMobileUA = "Mozilla/5.0 (Linux; Android 11) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

// knownDevices is keyed by lower-case name.
var knownDevices = map[string]Device{
	"pixel 5": {
		Name:       "Pixel 5",
		Width:      393,
		Height:     851,
		PixelRatio: 2.75,
		UserAgent:  "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Mobile:     true,
		Touch:      true,
	},
	"pixel 7": {
		Name:       "Pixel 7",
		Width:      412,
		Height:     915,
		PixelRatio: 2.625,
		UserAgent:  "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Mobile:     true,
		Touch:      true,
	},
	"iphone 12 pro": {
		Name:       "iPhone 12 Pro",
		Width:      390,
		Height:     844,
		PixelRatio: 3,
		UserAgent:  "Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1",
		Mobile:     true,
		Touch:      true,
	},
	"galaxy s20": {
		Name:       "Galaxy S20",
		Width:      360,
		Height:     800,
		PixelRatio: 4,
		UserAgent:  "Mozilla/5.0 (Linux; Android 10; SM-G981B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Mobile:     true,
		Touch:      true,
	},
}

// LookupDevice finds a known device by name, case-insensitively.
func LookupDevice(name string) (Device, bool) {
	d, ok := knownDevices[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// ResolveDevice picks the emulation profile for cfg. Unknown device names
// fall back to a generic handset sized from the configured window.
func ResolveDevice(cfg config.WebConfig, logger *zap.Logger) Device {
	if d, ok := LookupDevice(cfg.Device); ok {
		return d
	}
	if cfg.Device != "" && logger != nil {
		logger.Warn("Unknown emulation device, using configured window size.",
			zap.String("device", cfg.Device),
			zap.Int("width", cfg.Width),
			zap.Int("height", cfg.Height),
		)
	}
	return Device{
		Name:       "generic",
		Width:      int64(cfg.Width),
		Height:     int64(cfg.Height),
		PixelRatio: 1,
		UserAgent:  genericMobileUA,
		Mobile:     true,
		Touch:      true,
	}
}

// emulate returns the action that applies d to the current target.
func emulate(d Device) chromedp.Action {
	return chromedp.Emulate(d)
}
