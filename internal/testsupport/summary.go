package testsupport

import (
	"testing"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/measurement"
)

// NewSummary loads segments with the default catalog and aggregates them.
func NewSummary(t testing.TB, segments []Segment) *analysis.Summary {
	t.Helper()
	cat := catalog.Default()
	col, err := measurement.NewLoader(cat).Load(MarshalSegments(t, segments))
	if err != nil {
		t.Fatalf("load segments: %v", err)
	}
	summary, err := analysis.New(cat).Aggregate(col)
	if err != nil {
		t.Fatalf("aggregate segments: %v", err)
	}
	return summary
}

// ScenarioSegments returns three segments: two daytime Vehicle readings at 20
// and 40 dB and one night Dog reading at 90 dB. Their mean is 50 dB (grade D).
func ScenarioSegments() []Segment {
	return []Segment{
		NewSegment(10, 0, 20, "Vehicle"),
		NewSegment(14, 0, 40, "Vehicle"),
		NewSegment(23, 0, 90, "Dog"),
	}
}
