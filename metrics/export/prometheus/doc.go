// Package prometheus exposes engine metrics as a prometheus.Collector.
//
// [NewPrometheusExporter] wraps a [goGate.Engine]. Register it in any
// registry, or mount [PrometheusExporter.Handler], which serves a private
// registry. Session events and gate decisions are each one labeled counter,
// gogate_session_events_total{event} and gogate_gate_decisions_total{decision};
// the single histogram is gogate_evaluate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
