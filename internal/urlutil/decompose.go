// File: internal/urlutil/decompose.go
package urlutil

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// schemePattern matches an explicit "scheme://" prefix.
	schemePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*)://`)
	// portPattern is greedy, so the split happens on the last ':' followed by digits.
	portPattern = regexp.MustCompile(`^(.*):(\d+)$`)
	// anyPortPattern detects a port anywhere in a scheme-less string.
	anyPortPattern = regexp.MustCompile(`:\d+`)
)

// Ports that imply TLS when no scheme is given.
var tlsPorts = map[string]bool{"443": true, "8443": true}

// Parts is a URL broken into the pieces the request wrapper needs.
type Parts struct {
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Path     string `json:"path"`
	Query    string `json:"query"`
}

// InvalidURLError is returned when a URL has neither a scheme nor a port,
// so the protocol cannot be inferred.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("URL must contain at least a protocol or a port; current value: %q", e.URL)
}

// Origin renders "protocol://host:port".
func (p Parts) Origin() string {
	return fmt.Sprintf("%s://%s:%s", p.Protocol, p.Host, p.Port)
}

// String renders the full URL including path and query.
func (p Parts) String() string {
	s := p.Origin() + p.Path
	if p.Query != "" {
		s += "?" + p.Query
	}
	return s
}

// Decompose converts a loosely formed URL into its parts. Accepted shapes are
// "scheme://host[:port][/path][?query]" and "host:port[/path][?query]".
// A bare host without scheme or port is rejected with *InvalidURLError.
//
// Examples:
//
//	http://host:8080/path?q=1 -> (http, host, 8080, /path, q=1)
//	host.com:443              -> (https, host.com, 443, "", "")
//	https://host.com          -> (https, host.com, 443, "", "")
func Decompose(raw string) (Parts, error) {
	s := strings.TrimSpace(raw)

	// 1. Strip the scheme, remembering it.
	var scheme string
	if m := schemePattern.FindStringSubmatch(s); m != nil {
		scheme = strings.ToLower(m[1])
		s = s[len(m[0]):]
	}

	// Fragments never reach the server.
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}

	var query string
	if i := strings.Index(s, "?"); i >= 0 {
		s, query = s[:i], s[i+1:]
	}

	// 2-3. Without a scheme, a port is the only hint left.
	if scheme == "" && !anyPortPattern.MatchString(s) {
		return Parts{}, &InvalidURLError{URL: raw}
	}

	authority, path := s, ""
	if i := strings.Index(s, "/"); i >= 0 {
		authority, path = s[:i], s[i:]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}

	// 4. Host and port.
	host, port := authority, ""
	if m := portPattern.FindStringSubmatch(authority); m != nil {
		host, port = m[1], m[2]
	}

	// 5. Protocol.
	protocol := scheme
	if protocol == "" {
		protocol = "http"
		if tlsPorts[port] {
			protocol = "https"
		}
	}

	// 6. Default port.
	if port == "" {
		port = "80"
		if protocol == "https" {
			port = "443"
		}
	}

	return Parts{
		Protocol: protocol,
		Host:     host,
		Port:     port,
		Path:     path,
		Query:    query,
	}, nil
}
