// internal/browser/allocator.go
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/scalpel-e2e/internal/config"
)

// ChromePathEnv overrides Chrome discovery.
const ChromePathEnv = "CHROME_PATH"

// chromeCandidates are probed on PATH, in order.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// FindChrome returns the Chrome executable to launch, if any can be found.
func FindChrome() (string, bool) {
	if path := os.Getenv(ChromePathEnv); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// AllocatorFlags resolves the Chrome command-line switches for cfg. Values are
// either bool (a bare switch) or string.
func AllocatorFlags(cfg config.WebConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"no-sandbox":               true,
		"disable-gpu":              true,
		"disable-dev-shm-usage":    true,
		"no-first-run":             true,
		"no-default-browser-check": true,
		"enable-automation":        true,
		"window-size":              fmt.Sprintf("%d,%d", cfg.Width, cfg.Height),
	}
	if cfg.Headless {
		flags["headless"] = true
		flags["hide-scrollbars"] = true
		flags["mute-audio"] = true
	}

	// Extra args accept "--key=value" and bare "--key".
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		key, value, found := strings.Cut(arg, "=")
		if found {
			flags[key] = value
		} else {
			flags[key] = true
		}
	}
	return flags
}

// AllocatorOptions builds the exec allocator options for cfg.
func AllocatorOptions(cfg config.WebConfig) []chromedp.ExecAllocatorOption {
	flags := AllocatorFlags(cfg)

	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]chromedp.ExecAllocatorOption, 0, len(keys)+1)
	for _, k := range keys {
		opts = append(opts, chromedp.Flag(k, flags[k]))
	}
	if path, ok := FindChrome(); ok {
		opts = append(opts, chromedp.ExecPath(path))
	}
	return opts
}
