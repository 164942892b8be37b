package metrics

import (
	"sync"
	"time"
)

type storeStats struct {
	calls           int
	errors          int
	throttleHits    int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about list store calls.
// Stats are keyed by operation name (list, get, latest, create, update, delete).
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*storeStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*storeStats),
		otel:  otel,
	}
}

// RecordStoreCall increments counters for a store operation and stores the last observed latency.
func (r *Recorder) RecordStoreCall(backend, operation string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(operation)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStoreCall(backend, operation, duration, err)
	}
}

// RecordThrottle tracks that the list API throttled an operation and stores the last Retry-After.
func (r *Recorder) RecordThrottle(backend, operation string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(operation)
	stats.throttleHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordThrottle(backend, operation, retryAfter)
	}
}

// StoreCalls returns the total calls recorded for an operation.
func (r *Recorder) StoreCalls(operation string) int {
	return r.Snapshot(operation).Calls
}

// StoreErrors returns the total failed calls recorded for an operation.
func (r *Recorder) StoreErrors(operation string) int {
	return r.Snapshot(operation).Errors
}

// ThrottleHits returns the number of throttled responses seen for an operation.
func (r *Recorder) ThrottleHits(operation string) int {
	return r.Snapshot(operation).ThrottleHits
}

// LastRetryAfter returns the most recent Retry-After recorded for an operation.
func (r *Recorder) LastRetryAfter(operation string) time.Duration {
	return r.Snapshot(operation).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for an operation.
func (r *Recorder) LastCallLatency(operation string) time.Duration {
	return r.Snapshot(operation).LastCallLatency
}

// Snapshot is a copy of the current stats for one operation.
type Snapshot struct {
	Calls           int
	Errors          int
	ThrottleHits    int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(operation string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[operation]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		ThrottleHits:    stats.throttleHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

func (r *Recorder) ensureStatsLocked(operation string) *storeStats {
	stats, ok := r.stats[operation]
	if !ok {
		stats = &storeStats{}
		r.stats[operation] = stats
	}
	return stats
}
