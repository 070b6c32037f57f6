// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/xkilldash9x/scalpel-e2e/internal/config"
)

// Constants for default TCP/HTTP settings.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second

	DefaultMaxIdleConns        = 20
	DefaultMaxIdleConnsPerHost = 5
	DefaultIdleConnTimeout     = 30 * time.Second
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	// Security settings
	IgnoreTLSErrors bool
	TLSConfig       *tls.Config

	// Timeout settings
	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	// Connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Protocol settings
	ForceHTTP2         bool
	DisableCompression bool

	// FollowRedirects lets the client chase 3xx responses. API checks usually
	// want to assert on the redirect itself, so it is off by default.
	FollowRedirects bool

	Logger *zap.Logger
}

// Client is a wrapper around the standard http.Client.
//
// The caller is responsible for closing the Response.Body after consuming it
// when using the embedded methods directly. RequestClient.Do does this for you.
type Client struct {
	*http.Client
}

// NewDefaultClientConfig creates a configuration suitable for API checks.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        DefaultRequestTimeout,
		DialTimeout:           DefaultDialTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ForceHTTP2:            true,
		Logger:                zap.NewNop(),
	}
}

// ClientConfigFrom derives a client configuration from the network settings.
func ClientConfigFrom(cfg config.NetworkConfig, logger *zap.Logger) *ClientConfig {
	c := NewDefaultClientConfig()
	if cfg.Timeout > 0 {
		c.RequestTimeout = cfg.Timeout
	}
	c.IgnoreTLSErrors = cfg.IgnoreTLSErrors
	if logger != nil {
		c.Logger = logger.Named("httpclient")
	}
	return c
}

// NewHTTPTransport creates an http.Transport based on the provided configuration.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	tlsConfig := configureTLS(config)
	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: DefaultKeepAliveInterval,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		// Decompression is handled by CompressionMiddleware.
		DisableCompression: true,
		ForceAttemptHTTP2:  config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		// http2.ConfigureTransport modifies the transport in place to add HTTP/2 support.
		if err := http2.ConfigureTransport(transport); err != nil {
			config.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}

	return transport
}

// NewClient creates the client wrapper using the configured transport.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}

	var rt http.RoundTripper = NewHTTPTransport(config)
	if !config.DisableCompression {
		rt = NewCompressionMiddleware(rt)
	}

	standardClient := &http.Client{
		Transport: rt,
		Timeout:   config.RequestTimeout,
	}
	if !config.FollowRedirects {
		standardClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{Client: standardClient}
}

// configureTLS sets up the TLS configuration with strong defaults.
func configureTLS(config *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ClientSessionCache: tls.NewLRUClientSessionCache(64),
		}
	}
	if tlsConfig.MinVersion == 0 {
		tlsConfig.MinVersion = tls.VersionTLS12
	}

	// Self-signed endpoints in staging environments.
	tlsConfig.InsecureSkipVerify = config.IgnoreTLSErrors
	return tlsConfig
}
