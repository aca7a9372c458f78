package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Segment mirrors one entry of a sensor box export.
type Segment struct {
	BoxID     string    `json:"box_id"`
	Timestamp string    `json:"timestamp"`
	LevelDB   float64   `json:"LAeq_segment_dB"`
	Rating    string    `json:"LAeq_rating,omitempty"`
	MinDB     *float64  `json:"Lmin_dB,omitempty"`
	MaxDB     *float64  `json:"Lmax_dB,omitempty"`
	Labels    []string  `json:"top_5_labels"`
	Probs     []float64 `json:"top_5_probs"`
}

// NewSegment builds a segment at the given hour of 2025-12-04 with a single
// detected label. The minute offsets keep timestamps unique within an hour.
func NewSegment(hour, minute int, db float64, label string) Segment {
	ts := time.Date(2025, 12, 4, hour, minute, 0, 0, time.UTC)
	seg := Segment{
		BoxID:     "pi3",
		Timestamp: ts.Format("2006-01-02 15:04:05"),
		LevelDB:   db,
		Labels:    []string{},
		Probs:     []float64{},
	}
	if label != "" {
		seg.Labels = []string{label}
		seg.Probs = []float64{0.5}
	}
	return seg
}

// Sequence builds n segments spaced segmentSeconds apart starting at start.
func Sequence(start time.Time, segmentSeconds int, levels []float64, labels []string) []Segment {
	out := make([]Segment, len(levels))
	for i, db := range levels {
		ts := start.Add(time.Duration(i*segmentSeconds) * time.Second)
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		seg := NewSegment(0, 0, db, label)
		seg.Timestamp = ts.Format("2006-01-02 15:04:05")
		out[i] = seg
	}
	return out
}

// MarshalSegments encodes segments as a sensor export document.
func MarshalSegments(t testing.TB, segments []Segment) []byte {
	t.Helper()
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		t.Fatalf("marshal segments: %v", err)
	}
	return data
}

// WriteMeasurements writes segments to a JSON file under dir and returns its path.
func WriteMeasurements(t testing.TB, dir string, segments []Segment) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("box_%d.json", len(segments)))
	if err := os.WriteFile(path, MarshalSegments(t, segments), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
