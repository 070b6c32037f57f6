// File: internal/config/config.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/scalpel-e2e/internal/urlutil"
)

// EnvPrefix is the prefix for environment overrides, e.g. SCALPEL_E2E_WEB_BASE_URL.
const EnvPrefix = "SCALPEL_E2E"

// ArtifactsEnv names the directory that receives screenshots and log files.
const ArtifactsEnv = "HOST_ARTIFACTS"

// Config is the resolved configuration for a single harness run.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Web       WebConfig       `mapstructure:"web" yaml:"web"`
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// WebConfig drives the mobile-web suite.
type WebConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	Browser         string        `mapstructure:"browser" yaml:"browser"`
	Device          string        `mapstructure:"device" yaml:"device"`
	Headless        bool          `mapstructure:"is_headless" yaml:"is_headless"`
	Width           int           `mapstructure:"width" yaml:"width"`
	Height          int           `mapstructure:"height" yaml:"height"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
	Args            []string      `mapstructure:"args" yaml:"args"`
}

// APIConfig drives the REST suite.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// NetworkConfig tunes the HTTP client used by the REST suite.
type NetworkConfig struct {
	Timeout         time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	IgnoreTLSErrors bool              `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
}

// ArtifactsConfig locates run outputs.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scalpel-e2e")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Web --
	v.SetDefault("web.base_url", "https://m.twitch.tv")
	v.SetDefault("web.browser", "chrome")
	v.SetDefault("web.device", "Pixel 5")
	v.SetDefault("web.is_headless", false)
	v.SetDefault("web.width", 400)
	v.SetDefault("web.height", 1000)
	v.SetDefault("web.default_timeout", "5s")
	v.SetDefault("web.page_load_timeout", "60s")

	// -- API --
	v.SetDefault("api.base_url", "https://catfact.ninja")

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.ignore_tls_errors", false)

	// -- Artifacts --
	v.SetDefault("artifacts.dir", "./artifacts")
}

// BindEnv wires environment overrides. HOST_ARTIFACTS is honored for the
// artifacts directory alongside the prefixed form.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("artifacts.dir", EnvPrefix+"_ARTIFACTS_DIR", ArtifactsEnv); err != nil {
		return fmt.Errorf("failed to bind artifacts env: %w", err)
	}
	return nil
}

// NewDefaultConfig creates a configuration populated with default values only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Load resolves the configuration. Defaults must already be set on v and any
// flags bound; the ini file at iniPath (if non-empty) is layered beneath them.
func Load(v *viper.Viper, iniPath string) (*Config, error) {
	if iniPath != "" {
		path, err := homedir.Expand(iniPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand ini config path '%s': %w", iniPath, err)
		}
		values, err := ReadINI(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("failed to merge ini config '%s': %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals, normalizes and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Web.BaseURL = strings.TrimRight(cfg.Web.BaseURL, "/")
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Artifacts.Dir != "" {
		dir, err := homedir.Expand(cfg.Artifacts.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to expand artifacts dir: %w", err)
		}
		cfg.Artifacts.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Web.Validate(); err != nil {
		return fmt.Errorf("web: %w", err)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := urlutil.Decompose(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if c.Network.Timeout <= 0 {
		return fmt.Errorf("network.timeout must be a positive duration")
	}
	return nil
}

// Validate checks the web suite settings.
func (w *WebConfig) Validate() error {
	if w.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := urlutil.Decompose(w.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("width and height must be positive integers")
	}
	if w.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be a positive duration")
	}
	if w.PageLoadTimeout <= 0 {
		return fmt.Errorf("page_load_timeout must be a positive duration")
	}
	return nil
}

// ParseWindowSize parses the legacy "W,H" window-size flag.
func ParseWindowSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("window size must look like 'W,H', got %q", s)
	}
	width, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid window width in %q", s)
	}
	height, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid window height in %q", s)
	}
	return width, height, nil
}
