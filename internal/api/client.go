package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the PDF backend (upload, health, document endpoints).
type Client struct {
	http    *http.Client
	base    string
	metrics *Metrics
}

// New returns a Client rooted at baseURL. A nil hc uses a plain http.Client;
// timeouts are expected to come from the caller's context.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	c := &Client{http: hc, base: strings.TrimRight(baseURL, "/")}
	if lt, ok := hc.Transport.(*LimitedTransport); ok {
		c.metrics = lt.Opts.Metrics
	}
	return c
}

// NewHTTPClient wires a LimitedTransport built from opts into an http.Client.
func NewHTTPClient(opts TransportOptions) *http.Client {
	return &http.Client{Transport: NewLimitedTransport(opts)}
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string { return c.base }

// MetricsSnapshot returns transport counters, or a zero snapshot when the
// client was built without a LimitedTransport.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c.metrics == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// Ping checks the backend health endpoint, which answers 2xx (usually 204).
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if !ok2xx(res.StatusCode) {
		return newStatusError("health", res)
	}
	return nil
}

func ok2xx(code int) bool { return code >= 200 && code < 300 }

// ErrNotFound is matched by StatusError values carrying a 404.
var ErrNotFound = errors.New("not found")

// ErrMalformedBody reports a 2xx response whose body does not have the
// expected shape.
var ErrMalformedBody = errors.New("malformed response body")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op     string
	Code   int
	Status string
	Detail string
}

func newStatusError(op string, res *http.Response) *StatusError {
	detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &StatusError{Op: op, Code: res.StatusCode, Status: res.Status, Detail: strings.TrimSpace(string(detail))}
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s status %s: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s status %s", e.Op, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}
