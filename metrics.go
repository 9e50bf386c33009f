package goGate

import (
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/session"
)

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricSessionSaved counts successful session saves.
	MetricSessionSaved MetricID = iota
	// MetricSessionLoaded counts reads that returned a live session.
	MetricSessionLoaded
	// MetricSessionExpired counts expired sessions found and cleared on read.
	MetricSessionExpired
	// MetricSessionCorrupt counts undecodable sessions found and cleared on read.
	MetricSessionCorrupt
	// MetricSessionCleared counts explicit clears.
	MetricSessionCleared
	// MetricSessionStorageFailure counts storage errors.
	MetricSessionStorageFailure
	// MetricGateRender counts Render decisions.
	MetricGateRender
	// MetricGateRedirectLogin counts RedirectLogin decisions.
	MetricGateRedirectLogin
	// MetricGateRedirectForbidden counts RedirectForbidden decisions.
	MetricGateRedirectForbidden
	// MetricEvaluateLatency is the latency histogram of session read plus gate evaluation.
	MetricEvaluateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and the evaluate latency histogram.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id. It is a no-op when metrics are disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricEvaluateLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricEvaluateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies the current values. A disabled Metrics yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricEvaluateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricEvaluateLatency].buckets[i])
		}
		s.Histograms[MetricEvaluateLatency] = buckets
	}
	return s
}

func sessionMetric(kind session.EventKind) (MetricID, bool) {
	switch kind {
	case session.EventSaved:
		return MetricSessionSaved, true
	case session.EventLoaded:
		return MetricSessionLoaded, true
	case session.EventExpired:
		return MetricSessionExpired, true
	case session.EventCorrupt:
		return MetricSessionCorrupt, true
	case session.EventCleared:
		return MetricSessionCleared, true
	case session.EventStorageFailure:
		return MetricSessionStorageFailure, true
	default:
		return 0, false
	}
}

func decisionMetric(d gate.Decision) MetricID {
	switch d {
	case gate.RedirectLogin:
		return MetricGateRedirectLogin
	case gate.RedirectForbidden:
		return MetricGateRedirectForbidden
	default:
		return MetricGateRender
	}
}

// Bucket upper bounds: 50us, 100us, 250us, 500us, 1ms, 5ms, 25ms, +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()
	switch {
	case us <= 50:
		return 0
	case us <= 100:
		return 1
	case us <= 250:
		return 2
	case us <= 500:
		return 3
	case us <= 1000:
		return 4
	case us <= 5000:
		return 5
	case us <= 25000:
		return 6
	default:
		return 7
	}
}
