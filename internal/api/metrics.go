package api

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds lightweight counters for HTTP activity. The UI reads a
// Snapshot to render the connection footer.
type Metrics struct {
	TotalRequests     atomic.Int64
	TotalRetries      atomic.Int64
	TotalBackoffNanos atomic.Int64
	NetErrors         atomic.Int64

	ReadRequests  atomic.Int64 // GET/HEAD
	WriteRequests atomic.Int64 // POST/PUT/PATCH/DELETE

	UploadsStarted   atomic.Int64
	UploadsSucceeded atomic.Int64
	UploadBytes      atomic.Int64

	mu         sync.Mutex
	hostCounts map[string]int64
	status2xx  int64
	status3xx  int64
	status4xx  int64
	status429  int64
	status5xx  int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics { return &Metrics{hostCounts: make(map[string]int64)} }

// IncRequest increments per-host and total request counters.
func (m *Metrics) IncRequest(host, method string) {
	m.TotalRequests.Add(1)
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		m.ReadRequests.Add(1)
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		m.WriteRequests.Add(1)
	}
	m.mu.Lock()
	m.hostCounts[host]++
	m.mu.Unlock()
}

func (m *Metrics) IncRetry()    { m.TotalRetries.Add(1) }
func (m *Metrics) IncNetError() { m.NetErrors.Add(1) }

// AddBackoff accumulates backoff sleep time.
func (m *Metrics) AddBackoff(d time.Duration) { m.TotalBackoffNanos.Add(d.Nanoseconds()) }

// ObserveUpload records one upload attempt and its outcome.
func (m *Metrics) ObserveUpload(size int64, ok bool) {
	m.UploadsStarted.Add(1)
	if ok {
		m.UploadsSucceeded.Add(1)
		m.UploadBytes.Add(size)
	}
}

// IncStatus tracks status buckets.
func (m *Metrics) IncStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case code == 429:
		m.status429++
	case code >= 200 && code < 300:
		m.status2xx++
	case code >= 300 && code < 400:
		m.status3xx++
	case code >= 400 && code < 500:
		m.status4xx++
	case code >= 500:
		m.status5xx++
	}
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalRetries      int64
	TotalBackoffNanos int64
	NetErrors         int64
	HostCounts        map[string]int64
	ReadRequests      int64
	WriteRequests     int64
	UploadsStarted    int64
	UploadsSucceeded  int64
	UploadBytes       int64
	Status2xx         int64
	Status3xx         int64
	Status4xx         int64
	Status429         int64
	Status5xx         int64
}

// Snapshot returns a copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	hosts := make(map[string]int64, len(m.hostCounts))
	for k, v := range m.hostCounts {
		hosts[k] = v
	}
	return MetricsSnapshot{
		TotalRequests:     m.TotalRequests.Load(),
		TotalRetries:      m.TotalRetries.Load(),
		TotalBackoffNanos: m.TotalBackoffNanos.Load(),
		NetErrors:         m.NetErrors.Load(),
		HostCounts:        hosts,
		ReadRequests:      m.ReadRequests.Load(),
		WriteRequests:     m.WriteRequests.Load(),
		UploadsStarted:    m.UploadsStarted.Load(),
		UploadsSucceeded:  m.UploadsSucceeded.Load(),
		UploadBytes:       m.UploadBytes.Load(),
		Status2xx:         m.status2xx,
		Status3xx:         m.status3xx,
		Status4xx:         m.status4xx,
		Status429:         m.status429,
		Status5xx:         m.status5xx,
	}
}
