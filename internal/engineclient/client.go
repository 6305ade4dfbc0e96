// Package engineclient adapts HTTP requests onto the engine's local Unix
// socket, exposing both typed inspect/list/create/update/remove helpers and a
// raw Dial for byte-level passthrough.
package engineclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neuroforgede/swarmgate/internal/metrics"
)

// Client owns the connection to the engine's local socket. It is the only
// component that opens that socket; everything else goes through it.
type Client struct {
	http    *http.Client
	metrics *metrics.Metrics
}

// New builds a Client that dials socketPath for every request, regardless of
// the host/scheme given to individual calls. Connections are pooled and
// reused by the underlying http.Transport.
func New(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{http: &http.Client{Transport: transport}}
}

// SetMetrics attaches the collector every Dial call records against. Left
// unset, Dial simply skips recording; tests construct a Client without ever
// calling this.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// kindFromPath extracts the leading path segment ("services", "volumes", ...)
// Dial records every call under, mirroring the resource kinds the rest of the
// proxy already keys ownership checks on.
func kindFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "unknown"
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// Dial issues a raw request against the engine and returns its response
// unread, so callers (the streaming passthrough, in particular) can forward
// status, headers, and body without buffering.
//
// The host in the request URL is ignored by the transport's DialContext, so
// any fixed placeholder ("engine") works; only path and query matter.
func (c *Client) Dial(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*http.Response, error) {
	u := url.URL{Scheme: "http", Host: "engine", Path: path}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("engineclient: building request: %w", err)
	}
	if header != nil {
		req.Header = header.Clone()
	}

	resp, err := c.http.Do(req)
	c.recordCall(path, method, resp, err)
	if err != nil {
		return nil, fmt.Errorf("engineclient: dialing engine: %w", err)
	}
	return resp, nil
}

// recordCall increments EngineCallsTotal for one Dial invocation. Every
// typed helper (create/update/remove/inspect/list) ultimately calls Dial, so
// instrumenting it here covers the whole client surface from one place.
func (c *Client) recordCall(path, method string, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
	case resp.StatusCode >= 400:
		outcome = "engine_error"
	}
	c.metrics.EngineCallsTotal.WithLabelValues(kindFromPath(path), method, outcome).Inc()
}

// DoJSON issues a request and decodes a 2xx JSON response into out. Non-2xx
// responses are returned as *StatusError so callers can distinguish
// "engine reachable but said no" from transport failure.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	resp, err := c.Dial(ctx, method, path, query, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StatusError wraps a non-2xx response from the engine.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine responded %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err represents a 404 from the engine.
func IsNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusNotFound
}
