// File: internal/config/ini.go
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// legacySection is read as an alias of [web]; keys already in [web] win.
const legacySection = "pytest"

const maxInterpolationDepth = 10

// boolKeys lists keys that accept ini-style booleans (yes/no, on/off, 1/0).
var boolKeys = map[string]bool{
	"web.is_headless":           true,
	"network.ignore_tls_errors": true,
	"logger.add_source":         true,
	"logger.compress":           true,
}

// ReadINI parses an ini file into a nested map suitable for viper.MergeConfigMap.
// Values support "%(key)s" and "${key}" / "${section:key}" interpolation.
func ReadINI(path string) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ini config '%s': %w", path, err)
	}
	r := &iniResolver{file: f}

	out := make(map[string]any)
	for _, sec := range f.Sections() {
		name := strings.ToLower(sec.Name())
		if strings.EqualFold(name, ini.DefaultSection) || len(sec.Keys()) == 0 {
			continue
		}
		values := make(map[string]any, len(sec.Keys()))
		for _, key := range sec.Keys() {
			val, err := r.expand(name, key.Value(), 0)
			if err != nil {
				return nil, fmt.Errorf("ini config '%s' [%s] %s: %w", path, name, key.Name(), err)
			}
			typed, err := typedValue(sectionAlias(name)+"."+key.Name(), val)
			if err != nil {
				return nil, fmt.Errorf("ini config '%s' [%s] %s: %w", path, name, key.Name(), err)
			}
			values[key.Name()] = typed
		}
		out[name] = values
	}

	if legacy, ok := out[legacySection].(map[string]any); ok {
		web, _ := out["web"].(map[string]any)
		if web == nil {
			web = make(map[string]any, len(legacy))
		}
		for k, v := range legacy {
			if _, exists := web[k]; !exists {
				web[k] = v
			}
		}
		out["web"] = web
		delete(out, legacySection)
	}
	return out, nil
}

func sectionAlias(name string) string {
	if name == legacySection {
		return "web"
	}
	return name
}

func typedValue(fullKey, val string) (any, error) {
	if !boolKeys[fullKey] {
		return val, nil
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return nil, fmt.Errorf("not a boolean: %q", val)
}

// iniResolver performs extended interpolation on top of ini.v1's native
// "%(key)s" handling.
type iniResolver struct {
	file *ini.File
}

func (r *iniResolver) lookup(section, key string) (string, bool) {
	section, key = strings.ToLower(section), strings.ToLower(key)
	if s, err := r.file.GetSection(section); err == nil && s.HasKey(key) {
		return s.Key(key).Value(), true
	}
	if def := r.file.Section(""); def.HasKey(key) {
		return def.Key(key).Value(), true
	}
	return "", false
}

func (r *iniResolver) expand(section, value string, depth int) (string, error) {
	if !strings.Contains(value, "$") {
		return value, nil
	}
	if depth >= maxInterpolationDepth {
		return "", fmt.Errorf("interpolation depth exceeded for %q", value)
	}

	var expandErr error
	out := os.Expand(value, func(name string) string {
		if name == "$" {
			return "$"
		}
		sec, key := section, name
		if s, k, ok := strings.Cut(name, ":"); ok {
			sec, key = s, k
		}
		raw, ok := r.lookup(sec, key)
		if !ok {
			if expandErr == nil {
				expandErr = fmt.Errorf("unknown interpolation reference ${%s}", name)
			}
			return ""
		}
		resolved, err := r.expand(sec, raw, depth+1)
		if err != nil && expandErr == nil {
			expandErr = err
		}
		return resolved
	})
	if expandErr != nil {
		return "", expandErr
	}
	return out, nil
}
