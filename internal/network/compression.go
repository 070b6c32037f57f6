// File: internal/network/compression.go
package network

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on requests that do not set their own.
const acceptEncoding = "br, gzip, deflate"

var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} { return brotli.NewReader(nil) },
	}
	emptyReader = strings.NewReader("")
)

func getGzipReader(r io.Reader) (*gzip.Reader, error) {
	zr := gzipReaderPool.Get().(*gzip.Reader)
	if err := zr.Reset(r); err != nil {
		gzipReaderPool.Put(zr)
		return nil, err
	}
	return zr, nil
}

func putGzipReader(zr *gzip.Reader) {
	// Reset(nil) reads a header; an empty reader yields io.EOF instead.
	_ = zr.Reset(emptyReader)
	gzipReaderPool.Put(zr)
}

func getBrotliReader(r io.Reader) (*brotli.Reader, error) {
	br := brotliReaderPool.Get().(*brotli.Reader)
	if err := br.Reset(r); err != nil {
		brotliReaderPool.Put(br)
		return nil, err
	}
	return br, nil
}

func putBrotliReader(br *brotli.Reader) {
	_ = br.Reset(emptyReader)
	brotliReaderPool.Put(br)
}

// CompressionMiddleware is an http.RoundTripper that negotiates compression
// and transparently decodes gzip, deflate (zlib or raw) and brotli bodies.
type CompressionMiddleware struct {
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport, defaulting to http.DefaultTransport.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// closeWrapper closes both the decoder and the original body, returning
// pooled readers on the way out.
type closeWrapper struct {
	io.ReadCloser
	originalBody io.ReadCloser
	release      func()
}

func (w *closeWrapper) Close() error {
	if w.release != nil {
		w.release()
		w.release = nil
	}
	return errors.Join(w.ReadCloser.Close(), w.originalBody.Close())
}

// DecompressResponse wraps resp.Body with decoders for every Content-Encoding
// layer, applied in reverse order. On success the encoding and length headers
// are removed and resp.Uncompressed is set. On error the body may be partially
// consumed and should be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}

	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	var layers []string
	for _, value := range encodings {
		for _, part := range strings.Split(value, ",") {
			layers = append(layers, strings.ToLower(strings.TrimSpace(part)))
		}
	}

	for i := len(layers) - 1; i >= 0; i-- {
		var (
			reader  io.ReadCloser
			release func()
		)

		switch layers[i] {
		case "gzip", "x-gzip":
			zr, err := getGzipReader(resp.Body)
			if err != nil {
				return fmt.Errorf("gzip initialization error: %w", err)
			}
			reader = zr
			release = func() { putGzipReader(zr) }

		case "deflate":
			dr, err := tryDeflate(resp.Body)
			if err != nil {
				return fmt.Errorf("deflate initialization error: %w", err)
			}
			reader = dr

		case "br":
			br, err := getBrotliReader(resp.Body)
			if err != nil {
				return fmt.Errorf("brotli initialization error: %w", err)
			}
			reader = io.NopCloser(br)
			release = func() { putBrotliReader(br) }

		case "identity", "":
			continue

		default:
			return fmt.Errorf("unsupported Content-Encoding layer: %s", layers[i])
		}

		resp.Body = &closeWrapper{ReadCloser: reader, originalBody: resp.Body, release: release}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// tryDeflate decodes zlib-wrapped deflate, falling back to raw deflate when
// the stream does not start with a zlib header (RFC 1950 section 2.2).
func tryDeflate(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	hdr, err := br.Peek(2)
	if err == nil && hdr[0]&0x0f == 8 && (uint16(hdr[0])<<8|uint16(hdr[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}
