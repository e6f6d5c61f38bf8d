package api

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock allows deterministic control of time passage.
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock              { return &fakeClock{now: time.Unix(0, 0)} }
func (fc *fakeClock) Now() time.Time        { return fc.now }
func (fc *fakeClock) Sleep(d time.Duration) { fc.now = fc.now.Add(d); fc.slept += d }

// fakeRT returns a queued series of responses or errors.
type fakeRT struct {
	calls atomic.Int64
	queue []any // *http.Response or error
}

func (frt *fakeRT) RoundTrip(_ *http.Request) (*http.Response, error) {
	idx := frt.calls.Add(1) - 1
	if int(idx) >= len(frt.queue) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}
	switch item := frt.queue[idx].(type) {
	case *http.Response:
		if item.Body == nil {
			item.Body = http.NoBody
		}
		return item, nil
	case error:
		return nil, item
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func testOptions(fc *fakeClock) TransportOptions {
	return TransportOptions{
		RetryMax:     2,
		BackoffBase:  250 * time.Millisecond,
		BackoffCap:   5 * time.Second,
		Clock:        fc,
		JitterFn:     func(time.Duration, int) time.Duration { return 0 },
		Metrics:      NewMetrics(),
		DefaultLimit: Limit{RPS: 1000, Burst: 1000},
	}
}

func newReq(method string) *http.Request {
	req, _ := http.NewRequestWithContext(context.Background(), method, "http://backend/x", strings.NewReader("payload"))
	return req
}

func TestRetryAfterSecondsOnGet(t *testing.T) {
	fc := newFakeClock()
	opt := testOptions(fc)
	frt := &fakeRT{queue: []any{
		&http.Response{StatusCode: 429, Header: http.Header{"Retry-After": []string{"2"}}},
		&http.Response{StatusCode: 200},
	}}
	tr := NewLimitedTransport(opt)
	tr.Base = frt

	resp, err := tr.RoundTrip(newReq(http.MethodGet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if fc.slept != 2*time.Second {
		t.Fatalf("expected 2s sleep, got %v", fc.slept)
	}
	if got := opt.Metrics.Snapshot().TotalRetries; got != 1 {
		t.Fatalf("expected 1 retry, got %d", got)
	}
}

func TestGetRetriedOn503ThenGivesUp(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{
		&http.Response{StatusCode: 503},
		&http.Response{StatusCode: 503},
		&http.Response{StatusCode: 503},
	}}
	tr := NewLimitedTransport(testOptions(fc))
	tr.Base = frt

	resp, err := tr.RoundTrip(newReq(http.MethodGet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("want final 503, got %d", resp.StatusCode)
	}
	if frt.calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", frt.calls.Load())
	}
	// 250ms + 500ms of exponential backoff
	if fc.slept != 750*time.Millisecond {
		t.Fatalf("expected 750ms backoff, got %v", fc.slept)
	}
}

func TestPostIsNeverRetried(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{
		&http.Response{StatusCode: 503},
		&http.Response{StatusCode: 200},
	}}
	tr := NewLimitedTransport(testOptions(fc))
	tr.Base = frt

	resp, err := tr.RoundTrip(newReq(http.MethodPost))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected the 503 to surface, got %d", resp.StatusCode)
	}
	if frt.calls.Load() != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", frt.calls.Load())
	}
}

func TestPostNetworkErrorNotRetried(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{timeoutErr{}}}
	tr := NewLimitedTransport(testOptions(fc))
	tr.Base = frt

	if _, err := tr.RoundTrip(newReq(http.MethodPost)); err == nil {
		t.Fatal("expected error")
	}
	if frt.calls.Load() != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", frt.calls.Load())
	}
}

func TestTransientNetErrorRetriedWithCounters(t *testing.T) {
	fc := newFakeClock()
	frt := &fakeRT{queue: []any{timeoutErr{}, &http.Response{StatusCode: 200}}}
	tr := NewLimitedTransport(testOptions(fc))
	tr.Base = frt

	rc := &RetryCounters{}
	req := newReq(http.MethodGet).WithContext(WithRetryCounters(context.Background(), rc))
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if rc.Total != 1 || rc.Net != 1 {
		t.Fatalf("unexpected counters: %+v", rc)
	}
}

func TestTokenBucketWaitsForRefill(t *testing.T) {
	fc := newFakeClock()
	tb := newTokenBucket(Limit{RPS: 2, Burst: 1}, fc)
	ctx := context.Background()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if fc.slept < 500*time.Millisecond {
		t.Fatalf("expected ~500ms wait for refill, got %v", fc.slept)
	}
}

func TestTokenBucketHonoursCancelledContext(t *testing.T) {
	tb := newTokenBucket(Limit{RPS: 1, Burst: 1}, newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if d := parseRetryAfter("3", now); d != 3*time.Second {
		t.Fatalf("seconds: got %v", d)
	}
	date := now.Add(10 * time.Second).Format(http.TimeFormat)
	if d := parseRetryAfter(date, now); d != 10*time.Second {
		t.Fatalf("http-date: got %v", d)
	}
	if d := parseRetryAfter("soon", now); d != 0 {
		t.Fatalf("garbage: got %v", d)
	}
}
