package internaldefs

import (
	"testing"

	goGate "github.com/MrEthical07/goGate"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBoundsMatchLabels(t *testing.T) {
	if len(HistogramBoundLabels) != len(HistogramBounds)+1 {
		t.Fatalf("expected one label per bound plus +Inf, got %d bounds %d labels",
			len(HistogramBounds), len(HistogramBoundLabels))
	}
	for i := 1; i < len(HistogramBounds); i++ {
		if HistogramBounds[i] <= HistogramBounds[i-1] {
			t.Fatalf("bounds not increasing at %d", i)
		}
	}
}

func TestFamiliesCoverEveryCounterOnce(t *testing.T) {
	seen := map[goGate.MetricID]string{}
	for _, fam := range Families {
		values := map[string]bool{}
		for _, m := range fam.Members {
			if prev, ok := seen[m.ID]; ok {
				t.Fatalf("metric %d in both %s and %s", m.ID, prev, fam.Name)
			}
			if values[m.Value] {
				t.Fatalf("%s: duplicate label value %q", fam.Name, m.Value)
			}
			seen[m.ID] = fam.Name
			values[m.Value] = true
		}
	}
	for _, id := range []goGate.MetricID{
		goGate.MetricSessionSaved,
		goGate.MetricSessionLoaded,
		goGate.MetricSessionExpired,
		goGate.MetricSessionCorrupt,
		goGate.MetricSessionCleared,
		goGate.MetricSessionStorageFailure,
		goGate.MetricGateRender,
		goGate.MetricGateRedirectLogin,
		goGate.MetricGateRedirectForbidden,
	} {
		if _, ok := seen[id]; !ok {
			t.Fatalf("metric %d not exported", id)
		}
	}
	if _, ok := seen[goGate.MetricEvaluateLatency]; ok {
		t.Fatal("latency histogram must not be a counter member")
	}
}
