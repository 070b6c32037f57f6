// internal/network/network_test.go
package network

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scalpel-e2e/internal/config"
	"github.com/xkilldash9x/scalpel-e2e/internal/urlutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Keep-alive connections owned by the shared transport outlive individual tests.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

const payload = `{"fact":"Cats sleep a lot.","length":17}`

func compress(t *testing.T, encoding string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "br":
		w = brotli.NewWriter(&buf)
	case "deflate-zlib":
		w = zlib.NewWriter(&buf)
	case "deflate-raw":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w = fw
	default:
		t.Fatalf("unknown encoding %s", encoding)
	}
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// -- Configuration --

func TestNewDefaultClientConfig(t *testing.T) {
	cfg := NewDefaultClientConfig()
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultResponseHeaderTimeout, cfg.ResponseHeaderTimeout)
	assert.True(t, cfg.ForceHTTP2)
	assert.False(t, cfg.FollowRedirects)
	assert.NotNil(t, cfg.Logger)
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.NetworkConfig{Timeout: 7 * time.Second, IgnoreTLSErrors: true}, zaptest.NewLogger(t))
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.IgnoreTLSErrors)

	tlsConfig := configureTLS(cfg)
	assert.True(t, tlsConfig.InsecureSkipVerify)
	assert.NotZero(t, tlsConfig.MinVersion)
}

// -- Compression --

func TestCompressionMiddleware_Decodes(t *testing.T) {
	cases := map[string]string{
		"gzip":         "gzip",
		"br":           "br",
		"deflate-zlib": "deflate",
		"deflate-raw":  "deflate",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			body := compress(t, name)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, acceptEncoding, r.Header.Get("Accept-Encoding"))
				w.Header().Set("Content-Encoding", header)
				_, _ = w.Write(body)
			}))
			t.Cleanup(server.Close)

			client := NewClient(nil)
			t.Cleanup(client.CloseIdleConnections)

			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, payload, string(data))
			assert.True(t, resp.Uncompressed)
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestDecompressResponse_Unsupported(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"zstd"}},
		Body:   io.NopCloser(strings.NewReader("x")),
	}
	err := DecompressResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported Content-Encoding")
}

func TestDecompressResponse_Identity(t *testing.T) {
	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"identity"}},
		Body:   io.NopCloser(strings.NewReader(payload)),
	}
	require.NoError(t, DecompressResponse(resp))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestCompressionMiddleware_DoesNotMutateRequest(t *testing.T) {
	var seen string
	rt := NewCompressionMiddleware(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Accept-Encoding")
		return &http.Response{StatusCode: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, acceptEncoding, seen)
	assert.Empty(t, req.Header.Get("Accept-Encoding"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// -- Request wrapper --

func newTestRequestClient(t *testing.T, handler http.HandlerFunc) *RequestClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(nil)
	t.Cleanup(client.CloseIdleConnections)

	rc, err := NewRequestClient(server.URL, client, zaptest.NewLogger(t))
	require.NoError(t, err)
	return rc
}

func TestRequestClient_Do(t *testing.T) {
	rc := newTestRequestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/facts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "yes", r.Header.Get("X-Trace"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"tom"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(payload))
	})

	resp, err := rc.Do(context.Background(), Request{
		Method:  "post",
		Path:    "facts",
		Headers: map[string]string{"X-Trace": "yes"},
		Query:   url.Values{"page": []string{"2"}},
		Body:    map[string]string{"name": "tom"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var decoded struct {
		Fact   string `json:"fact"`
		Length int    `json:"length"`
	}
	require.NoError(t, resp.JSON(&decoded))
	assert.Equal(t, 17, decoded.Length)
	assert.Positive(t, resp.Elapsed)
}

func TestRequestClient_NonSuccessIsNotAnError(t *testing.T) {
	rc := newTestRequestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	resp, err := rc.Get(context.Background(), "/missing", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestClient_RedirectsAreNotFollowed(t *testing.T) {
	rc := newTestRequestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})

	resp, err := rc.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/elsewhere", resp.Header.Get("Location"))
}

func TestRequestClient_ContextCancelled(t *testing.T) {
	rc := newTestRequestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rc.Get(ctx, "/", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRequestClient_UsesOriginOnly(t *testing.T) {
	rc, err := NewRequestClient("catfact.ninja:443/ignored/path", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://catfact.ninja:443", rc.Origin())
}

func TestNewRequestClient_InvalidURL(t *testing.T) {
	_, err := NewRequestClient("catfact.ninja", nil, nil)
	var invalid *urlutil.InvalidURLError
	require.ErrorAs(t, err, &invalid)
}

func TestResponse_JSONError(t *testing.T) {
	resp := &Response{Body: []byte("not json")}
	var v map[string]any
	err := resp.JSON(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
