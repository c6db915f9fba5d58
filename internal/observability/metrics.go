package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests and query operations.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	queryCount   map[string]int64
	queryNanos   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		queryCount:   make(map[string]int64),
		queryNanos:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// TimeQuery starts a latency measurement for a store operation. The returned
// stop function records it; use with defer at the top of the operation.
func (m *Metrics) TimeQuery(operation string) func() {
	start := time.Now()
	return func() {
		m.RecordQuery(operation, time.Since(start))
	}
}

// RecordQuery tracks per-operation query counts and cumulative latency.
func (m *Metrics) RecordQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCount[operation]++
	m.queryNanos[operation] += duration.Nanoseconds()
}

// QueryCount returns the number of recorded calls for an operation.
func (m *Metrics) QueryCount(operation string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCount[operation]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
