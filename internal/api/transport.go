package api

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limit defines a simple rate limit: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// TransportOptions configures the rate-limited transport. Retries only ever
// apply to idempotent requests; uploads go out exactly once.
type TransportOptions struct {
	RetryMax    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	JitterFn    func(base time.Duration, attempt int) time.Duration
	Clock       Clock
	Metrics     *Metrics

	// DefaultLimit applies to hosts without an entry in HostLimits.
	DefaultLimit Limit
	HostLimits   map[string]Limit
}

// DefaultTransportOptionsFromEnv returns defaults tuned for an interactive
// client, with PDFDESK_RPS, PDFDESK_BURST, PDFDESK_RETRY_MAX,
// PDFDESK_RETRY_BASE_MS and PDFDESK_RETRY_CAP_MS overrides.
func DefaultTransportOptionsFromEnv() TransportOptions {
	lim := Limit{RPS: 10, Burst: 10}
	if f, ok := envFloat("PDFDESK_RPS"); ok && f > 0 {
		lim.RPS = f
	}
	if n, ok := envInt("PDFDESK_BURST"); ok && n > 0 {
		lim.Burst = n
	}

	retryMax := 3
	if n, ok := envInt("PDFDESK_RETRY_MAX"); ok && n >= 0 {
		retryMax = n
	}
	backoffBase := 250 * time.Millisecond
	if ms, ok := envInt("PDFDESK_RETRY_BASE_MS"); ok && ms >= 0 {
		backoffBase = time.Duration(ms) * time.Millisecond
	}
	backoffCap := 5 * time.Second
	if ms, ok := envInt("PDFDESK_RETRY_CAP_MS"); ok && ms > 0 {
		backoffCap = time.Duration(ms) * time.Millisecond
	}

	return TransportOptions{
		RetryMax:    retryMax,
		BackoffBase: backoffBase,
		BackoffCap:  backoffCap,
		Clock:       realClock{},
		JitterFn: func(base time.Duration, _ int) time.Duration {
			if base <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(base.Nanoseconds()))
		},
		Metrics:      NewMetrics(),
		DefaultLimit: lim,
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envFloat(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// tokenBucket is a simple per-host rate limiter with fractional tokens.
type tokenBucket struct {
	mu     sync.Mutex
	rps    float64
	burst  float64
	tokens float64
	last   time.Time
	clock  Clock
}

func newTokenBucket(lim Limit, clock Clock) *tokenBucket {
	burst := float64(max(1, lim.Burst))
	rps := lim.RPS
	if rps <= 0 {
		rps = 10
	}
	return &tokenBucket{rps: rps, burst: burst, tokens: burst, last: clock.Now(), clock: clock}
}

func (tb *tokenBucket) refillLocked(now time.Time) {
	delta := now.Sub(tb.last).Seconds() * tb.rps
	if delta > 0 {
		tb.tokens = math.Min(tb.burst, tb.tokens+delta)
		tb.last = now
	}
}

// Wait blocks until a token is available or ctx is done.
func (tb *tokenBucket) Wait(ctx context.Context) error {
	const step = 5 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tb.mu.Lock()
		tb.refillLocked(tb.clock.Now())
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - tb.tokens) / tb.rps * float64(time.Second))
		tb.mu.Unlock()
		if wait < step {
			wait = step
		}
		deadline := tb.clock.Now().Add(wait)
		for tb.clock.Now().Before(deadline) {
			if err := ctx.Err(); err != nil {
				return err
			}
			tb.clock.Sleep(step)
		}
	}
}

// LimitedTransport wraps a base RoundTripper with per-host rate limiting,
// request metrics and retries for idempotent methods.
type LimitedTransport struct {
	Base     http.RoundTripper
	Opts     TransportOptions
	limMu    sync.Mutex
	limiters map[string]*tokenBucket
}

func NewLimitedTransport(opts TransportOptions) *LimitedTransport {
	return &LimitedTransport{Opts: opts, limiters: make(map[string]*tokenBucket)}
}

func (t *LimitedTransport) limiter(host string) *tokenBucket {
	if host == "" {
		host = "_default_"
	}
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if tb, ok := t.limiters[host]; ok {
		return tb
	}
	lim := t.Opts.DefaultLimit
	if v, ok := t.Opts.HostLimits[host]; ok {
		lim = v
	}
	tb := newTokenBucket(lim, t.clock())
	t.limiters[host] = tb
	return tb
}

func (t *LimitedTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *LimitedTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

func (t *LimitedTransport) jitter(base time.Duration, attempt int) time.Duration {
	if t.Opts.JitterFn != nil {
		return t.Opts.JitterFn(base, attempt)
	}
	return 0
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	lim := t.limiter(req.URL.Host)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.IncRequest(req.URL.Host, req.Method)
	}

	attempts := 1
	if idempotent(req.Method) {
		attempts = max(1, t.Opts.RetryMax+1)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := lim.Wait(req.Context()); err != nil {
			return nil, err
		}

		resp, err := t.base().RoundTrip(req)
		if err != nil {
			if t.Opts.Metrics != nil {
				t.Opts.Metrics.IncNetError()
			}
			if isTransientNetErr(err) && attempt < attempts-1 {
				lastErr = err
				if rc := getRetryCounters(req.Context()); rc != nil {
					rc.Total++
					rc.Net++
				}
				t.sleepBackoff(attempt)
				continue
			}
			return nil, err
		}

		if t.Opts.Metrics != nil {
			t.Opts.Metrics.IncStatus(resp.StatusCode)
		}

		if shouldRetryStatus(resp.StatusCode) && attempt < attempts-1 {
			if rc := getRetryCounters(req.Context()); rc != nil {
				rc.Total++
				if resp.StatusCode == http.StatusTooManyRequests {
					rc.Status429++
				} else {
					rc.Status5xx++
				}
			}
			if t.Opts.Metrics != nil {
				t.Opts.Metrics.IncRetry()
			}
			ra := parseRetryAfter(resp.Header.Get("Retry-After"), t.clock().Now())
			resp.Body.Close()
			if ra > 0 {
				d := minDur(ra, t.backoffCap())
				t.clock().Sleep(d)
				if t.Opts.Metrics != nil {
					t.Opts.Metrics.AddBackoff(d)
				}
			} else {
				t.sleepBackoff(attempt)
			}
			continue
		}

		return resp, nil
	}
	if lastErr == nil {
		lastErr = errors.New("max retries exceeded")
	}
	return nil, lastErr
}

func (t *LimitedTransport) backoffCap() time.Duration {
	if t.Opts.BackoffCap > 0 {
		return t.Opts.BackoffCap
	}
	return 5 * time.Second
}

func (t *LimitedTransport) sleepBackoff(attempt int) {
	base := t.Opts.BackoffBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	limit := t.backoffCap()
	// exponential backoff: base * 2^attempt
	delay := minDur(time.Duration(float64(base)*math.Pow(2, float64(attempt))), limit)
	d := minDur(delay+t.jitter(delay, attempt), limit)
	t.clock().Sleep(d)
	if t.Opts.Metrics != nil {
		t.Opts.Metrics.AddBackoff(d)
	}
}

func isTransientNetErr(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset")
}

func shouldRetryStatus(code int) bool {
	return code == 429 || code == 502 || code == 503 || code == 504
}

func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
