// Package otel binds engine metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter family
// (gogate_session_events_total with an "event" attribute,
// gogate_gate_decisions_total with a "decision" attribute), and carries the
// latency histogram as a bucket gauge keyed by "le" plus a count gauge. One
// callback reads [goGate.Engine.MetricsSnapshot] per collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
