package otel

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goGate "github.com/MrEthical07/goGate"
)

type fakeSource struct {
	mu       sync.RWMutex
	counters map[goGate.MetricID]uint64
	latency  []uint64
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goGate.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goGate.MetricsSnapshot{
		Counters:   make(map[goGate.MetricID]uint64, len(f.counters)),
		Histograms: map[goGate.MetricID][]uint64{},
	}
	for k, v := range f.counters {
		out.Counters[k] = v
	}
	if f.latency != nil {
		out.Histograms[goGate.MetricEvaluateLatency] = append([]uint64(nil), f.latency...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func collect(t *testing.T, src metricsSource) map[string]metricdata.Aggregation {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exp, err := NewOTelExporterFromSource(provider.Meter("gogate-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	t.Cleanup(func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

// pointsByAttr indexes int64 data points by the value of key.
func pointsByAttr(t *testing.T, data metricdata.Aggregation, key string) map[string]int64 {
	t.Helper()
	var points []metricdata.DataPoint[int64]
	switch d := data.(type) {
	case metricdata.Sum[int64]:
		points = d.DataPoints
	case metricdata.Gauge[int64]:
		points = d.DataPoints
	default:
		t.Fatalf("unexpected aggregation %T", data)
	}
	out := make(map[string]int64, len(points))
	for _, p := range points {
		v, ok := p.Attributes.Value(attribute.Key(key))
		if !ok {
			t.Fatalf("data point without %q attribute", key)
		}
		out[v.AsString()] = p.Value
	}
	return out
}

func TestExporterLabelsSessionEventsAndDecisions(t *testing.T) {
	got := collect(t, &fakeSource{
		counters: map[goGate.MetricID]uint64{
			goGate.MetricSessionSaved:          4,
			goGate.MetricSessionCorrupt:        1,
			goGate.MetricGateRender:            3,
			goGate.MetricGateRedirectForbidden: 5,
		},
		dropped: 2,
	})

	events := pointsByAttr(t, got["gogate_session_events_total"], "event")
	if events["saved"] != 4 || events["corrupt"] != 1 || events["expired"] != 0 {
		t.Fatalf("unexpected session events %v", events)
	}
	if len(events) != 6 {
		t.Fatalf("expected 6 event series, got %d", len(events))
	}

	decisions := pointsByAttr(t, got["gogate_gate_decisions_total"], "decision")
	if decisions["render"] != 3 || decisions["redirect_forbidden"] != 5 || decisions["redirect_login"] != 0 {
		t.Fatalf("unexpected decisions %v", decisions)
	}

	dropped, ok := got["gogate_audit_dropped_total"].(metricdata.Sum[int64])
	if !ok || len(dropped.DataPoints) != 1 || dropped.DataPoints[0].Value != 2 {
		t.Fatalf("unexpected audit dropped %#v", got["gogate_audit_dropped_total"])
	}
	if _, ok := got["gogate_evaluate_latency_seconds_bucket"]; ok {
		t.Fatal("latency gauges must stay empty without a histogram")
	}
}

func TestExporterLatencyBucketsAreCumulative(t *testing.T) {
	got := collect(t, &fakeSource{
		counters: map[goGate.MetricID]uint64{},
		latency:  []uint64{1, 2, 0, 0, 0, 0, 0, 3},
	})

	buckets := pointsByAttr(t, got["gogate_evaluate_latency_seconds_bucket"], "le")
	if buckets["0.00005"] != 1 || buckets["0.0001"] != 3 || buckets["0.025"] != 3 || buckets["+Inf"] != 6 {
		t.Fatalf("unexpected buckets %v", buckets)
	}
	count, ok := got["gogate_evaluate_latency_seconds_count"].(metricdata.Gauge[int64])
	if !ok || len(count.DataPoints) != 1 || count.DataPoints[0].Value != 6 {
		t.Fatalf("unexpected count %#v", got["gogate_evaluate_latency_seconds_count"])
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	if _, err := NewOTelExporterFromSource(provider.Meter("gogate-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollect(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	src := &fakeSource{counters: map[goGate.MetricID]uint64{}}

	exp, err := NewOTelExporterFromSource(provider.Meter("gogate-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.counters[goGate.MetricSessionLoaded] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
