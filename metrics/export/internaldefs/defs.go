package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// Member binds one engine counter to its label value within a family.
type Member struct {
	ID    goGate.MetricID
	Value string
}

// FamilyDef is one exported counter whose series are split by a single
// label, e.g. gogate_gate_decisions_total{decision="render"}.
type FamilyDef struct {
	Name    string
	Help    string
	Label   string
	Members []Member
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// Families lists every exported counter family in a stable order. Label
// values match session.EventKind and gate.Decision names without prefixes.
var Families = []FamilyDef{
	{
		Name:  "gogate_session_events_total",
		Help:  "Session lifecycle transitions by event.",
		Label: "event",
		Members: []Member{
			{ID: goGate.MetricSessionSaved, Value: "saved"},
			{ID: goGate.MetricSessionLoaded, Value: "loaded"},
			{ID: goGate.MetricSessionExpired, Value: "expired"},
			{ID: goGate.MetricSessionCorrupt, Value: "corrupt"},
			{ID: goGate.MetricSessionCleared, Value: "cleared"},
			{ID: goGate.MetricSessionStorageFailure, Value: "storage_failure"},
		},
	},
	{
		Name:  "gogate_gate_decisions_total",
		Help:  "Gate decisions by outcome.",
		Label: "decision",
		Members: []Member{
			{ID: goGate.MetricGateRender, Value: "render"},
			{ID: goGate.MetricGateRedirectLogin, Value: "redirect_login"},
			{ID: goGate.MetricGateRedirectForbidden, Value: "redirect_forbidden"},
		},
	},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricEvaluateLatency, Name: "gogate_evaluate_latency_seconds", Help: "Session read plus gate evaluation latency."},
}

// AuditDropped names the audit backpressure counter.
const (
	AuditDroppedName = "gogate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the finite bucket upper bounds in seconds. The last
// engine bucket is +Inf.
var HistogramBounds = []float64{
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
	0.005,
	0.025,
}

// HistogramBoundLabels are the le label values of each bucket, +Inf
// included, for exporters without a native cumulative histogram.
var HistogramBoundLabels = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
