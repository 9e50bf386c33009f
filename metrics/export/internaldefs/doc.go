// Package internaldefs holds the metric names, label keys, help strings and
// bucket bounds shared by the Prometheus and OTel exporters, so both expose
// the same series.
//
// Engine counters are grouped into labeled families: session lifecycle
// events under one counter keyed by "event", gate outcomes under one keyed
// by "decision".
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
