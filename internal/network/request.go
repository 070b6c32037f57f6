// File: internal/network/request.go
package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/urlutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodySize bounds how much of a response body is buffered.
const maxBodySize = 16 << 20

// Request describes a single call. Body may be nil, a []byte, a string, or
// any value that is encoded as JSON.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   url.Values
	Body    any
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body as JSON: %w", err)
	}
	return nil
}

// RequestClient issues requests against one endpoint, identified by the
// origin (protocol, host, port) of its base URL.
type RequestClient struct {
	origin  string
	client  *Client
	headers map[string]string
	logger  *zap.Logger
}

// NewRequestClient decomposes baseURL and binds the client to its origin.
// Any path in baseURL is ignored; request paths are absolute.
func NewRequestClient(baseURL string, client *Client, logger *zap.Logger) (*RequestClient, error) {
	parts, err := urlutil.Decompose(baseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = NewClient(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestClient{
		origin:  parts.Origin(),
		client:  client,
		headers: map[string]string{"Accept": "application/json"},
		logger:  logger.Named("request").With(zap.String("origin", parts.Origin())),
	}, nil
}

// Origin returns "protocol://host:port".
func (c *RequestClient) Origin() string { return c.origin }

// SetHeader adds a header sent with every request.
func (c *RequestClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// Do performs the request and buffers the response. Non-2xx statuses are not
// errors; callers assert on StatusCode.
func (c *RequestClient) Do(ctx context.Context, r Request) (*Response, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := c.origin + ensureLeadingSlash(r.Path)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	body, contentType, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request for '%s': %w", method, target, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	logger := c.logger.With(zap.String("request_id", requestID), zap.String("method", method), zap.String("url", target))
	logger.Debug("Sending request.")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s %s: %w", method, target, err)
	}
	elapsed := time.Since(start)

	logger.Debug("Received response.",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", elapsed),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Elapsed:    elapsed,
	}, nil
}

// Get is Do with GET and a query.
func (c *RequestClient) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), "application/octet-stream", nil
	case string:
		return strings.NewReader(b), "text/plain; charset=utf-8", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body as JSON: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func ensureLeadingSlash(path string) string {
	if path == "" || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
