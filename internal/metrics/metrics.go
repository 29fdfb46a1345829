package metrics

import (
	"sync"
	"time"
)

type endpointStats struct {
	calls           int
	errors          int
	retries         int
	lastCallLatency time.Duration
}

type pickStats struct {
	toggles    map[string]int
	confirmed  int
	rolledBack int
}

// Recorder captures lightweight, in-memory metrics about API calls and pick
// reconciliation, mirrored to OpenTelemetry instruments when configured.
type Recorder struct {
	mu        sync.Mutex
	endpoints map[string]*endpointStats
	picks     pickStats
	bootstrap map[string]int
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		endpoints: make(map[string]*endpointStats),
		picks:     pickStats{toggles: make(map[string]int)},
		bootstrap: make(map[string]int),
		otel:      otel,
	}
}

// RecordAPICall increments counters for a backend call and stores the last observed latency.
func (r *Recorder) RecordAPICall(endpoint string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureEndpoint(endpoint)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordAPICall(endpoint, duration, err)
	}
}

// RecordRetry tracks a retried read against an endpoint.
func (r *Recorder) RecordRetry(endpoint string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.ensureEndpoint(endpoint).retries++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRetry(endpoint)
	}
}

// RecordToggle counts an optimistic pick change by intent (create, update, delete).
func (r *Recorder) RecordToggle(intent string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.picks.toggles[intent]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordToggle(intent)
	}
}

// RecordReconciliation counts a toggle outcome: confirmed by the backend or rolled back.
func (r *Recorder) RecordReconciliation(intent string, confirmed bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if confirmed {
		r.picks.confirmed++
	} else {
		r.picks.rolledBack++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordReconciliation(intent, confirmed)
	}
}

// RecordBootstrap counts session bootstrap outcomes (restored, cleared, preserved, skipped).
func (r *Recorder) RecordBootstrap(outcome string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.bootstrap[outcome]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordBootstrap(outcome)
	}
}

// APICalls returns the total attempts recorded for an endpoint.
func (r *Recorder) APICalls(endpoint string) int {
	return r.Snapshot(endpoint).Calls
}

// APIErrors returns the failed attempts recorded for an endpoint.
func (r *Recorder) APIErrors(endpoint string) int {
	return r.Snapshot(endpoint).Errors
}

// Snapshot is a copy of the stats for one endpoint.
type Snapshot struct {
	Calls           int
	Errors          int
	Retries         int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(endpoint string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.endpoints[endpoint]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		Retries:         stats.retries,
		LastCallLatency: stats.lastCallLatency,
	}
}

// PickSnapshot summarizes reconciliation activity.
type PickSnapshot struct {
	Toggles    map[string]int
	Confirmed  int
	RolledBack int
}

func (r *Recorder) Picks() PickSnapshot {
	if r == nil {
		return PickSnapshot{Toggles: map[string]int{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	toggles := make(map[string]int, len(r.picks.toggles))
	for k, v := range r.picks.toggles {
		toggles[k] = v
	}
	return PickSnapshot{Toggles: toggles, Confirmed: r.picks.confirmed, RolledBack: r.picks.rolledBack}
}

// BootstrapCount returns how often a bootstrap ended with the given outcome.
func (r *Recorder) BootstrapCount(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bootstrap[outcome]
}

// RecordHTTPRequest tracks basic HTTP metrics for the companion server.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// callers hold r.mu
func (r *Recorder) ensureEndpoint(endpoint string) *endpointStats {
	stats, ok := r.endpoints[endpoint]
	if !ok {
		stats = &endpointStats{}
		r.endpoints[endpoint] = stats
	}
	return stats
}
