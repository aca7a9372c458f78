package measurement

import (
	"slices"
	"sort"
	"time"

	"sonalyze/internal/catalog"
)

// Record is one validated, enriched sensor segment.
type Record struct {
	BoxID         string
	Timestamp     time.Time
	LevelDB       float64
	Rating        catalog.Rating
	MinDB         *float64
	MaxDB         *float64
	Labels        []string
	Probabilities []float64

	Hour                int
	Night               bool
	DominantLabel       string
	DominantProbability float64
}

// Collection is the immutable result of a successful load. Records keep
// input order.
type Collection struct {
	source   string
	records  []Record
	warnings []Warning
}

// Source names where the records came from (a path or "-" for stdin).
func (c *Collection) Source() string { return c.source }

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.records) }

// Records returns a copy of the records in input order.
func (c *Collection) Records() []Record { return cloneRecords(c.records) }

// Warnings returns the non-fatal issues collected during load.
func (c *Collection) Warnings() []Warning { return slices.Clone(c.warnings) }

// BoxIDs lists the distinct box identifiers, sorted.
func (c *Collection) BoxIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range c.records {
		if r.BoxID == "" {
			continue
		}
		if _, ok := seen[r.BoxID]; ok {
			continue
		}
		seen[r.BoxID] = struct{}{}
		ids = append(ids, r.BoxID)
	}
	sort.Strings(ids)
	return ids
}

// Span returns the earliest and latest timestamps.
func (c *Collection) Span() (time.Time, time.Time) {
	first, last := c.records[0].Timestamp, c.records[0].Timestamp
	for _, r := range c.records[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return first, last
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		r.Labels = slices.Clone(r.Labels)
		r.Probabilities = slices.Clone(r.Probabilities)
		if r.MinDB != nil {
			v := *r.MinDB
			r.MinDB = &v
		}
		if r.MaxDB != nil {
			v := *r.MaxDB
			r.MaxDB = &v
		}
		out[i] = r
	}
	return out
}
