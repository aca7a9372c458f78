package analysis

import (
	"bytes"
	"encoding/json"

	"sonalyze/internal/catalog"
)

// Summary is the complete analysis of one collection.
type Summary struct {
	Global   Global       `json:"global"`
	DayNight DayNight     `json:"day_night"`
	Sounds   Sounds       `json:"sounds"`
	Ratings  Ratings      `json:"ratings"`
	Hourly   []HourStats  `json:"hourly"`
	Heatmap  []HeatmapRow `json:"heatmap"`
	Events   []Event      `json:"events"`
}

// Global holds whole-collection statistics.
type Global struct {
	TotalSegments int            `json:"total_segments"`
	DurationHours float64        `json:"duration_hours"`
	DateStart     string         `json:"date_start"`
	DateEnd       string         `json:"date_end"`
	MeanDB        float64        `json:"db_mean"`
	MinDB         float64        `json:"db_min"`
	MaxDB         float64        `json:"db_max"`
	MedianDB      float64        `json:"db_median"`
	Rating        catalog.Rating `json:"note_globale"`
}

// PeriodStats describes one side of the day/night split. Mean, Min, and Max
// are nil when Count is zero. Note is classified from the unrounded mean.
type PeriodStats struct {
	Mean  *float64       `json:"mean"`
	Min   *float64       `json:"min"`
	Max   *float64       `json:"max"`
	Count int            `json:"count"`
	Note  catalog.Rating `json:"note,omitempty"`
}

// Empty reports whether the period had no records.
func (p PeriodStats) Empty() bool { return p.Count == 0 }

// Rating returns the period grade, or reports false when the period is empty.
func (p PeriodStats) Rating() (catalog.Rating, bool) {
	return p.Note, p.Note != ""
}

type DayNight struct {
	Day   PeriodStats `json:"jour"`
	Night PeriodStats `json:"nuit"`
}

// Sounds groups the label rankings, family distributions, and classification.
type Sounds struct {
	Top            []SoundRank        `json:"top_5"`
	TopDay         []SoundRank        `json:"top_5_jour"`
	TopNight       []SoundRank        `json:"top_5_nuit"`
	FamiliesDay    FamilyDistribution `json:"families_jour"`
	FamiliesNight  FamilyDistribution `json:"families_nuit"`
	Families       FamilyDistribution `json:"families"`
	Classification Classification     `json:"classification"`
}

// SoundRank is one entry of a dominant-label ranking.
type SoundRank struct {
	Label         string         `json:"label"`
	Count         int            `json:"count"`
	Percentage    float64        `json:"percentage"`
	AvgDB         float64        `json:"avg_db"`
	Rating        catalog.Rating `json:"note"`
	AvgScore      float64        `json:"avg_score"`
	Family        catalog.Family `json:"family"`
	IsProblematic bool           `json:"is_problematic"`
	IsNormal      bool           `json:"is_normal"`
}

// FamilyStat aggregates the records whose dominant label maps to one family.
type FamilyStat struct {
	Family     catalog.Family `json:"-"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	AvgDB      float64        `json:"avg_db"`
	Rating     catalog.Rating `json:"note"`
}

// FamilyDistribution is an ordered family to stats mapping. Entries follow the
// catalog enumeration order and families without records are absent.
type FamilyDistribution struct {
	entries []FamilyStat
}

// Entries returns the present families in enumeration order.
func (d FamilyDistribution) Entries() []FamilyStat {
	out := make([]FamilyStat, len(d.entries))
	copy(out, d.entries)
	return out
}

// Get returns the stats for f. Absent families report false and should be
// read as zero.
func (d FamilyDistribution) Get(f catalog.Family) (FamilyStat, bool) {
	for _, e := range d.entries {
		if e.Family == f {
			return e, true
		}
	}
	return FamilyStat{}, false
}

// Len returns the number of present families.
func (d FamilyDistribution) Len() int { return len(d.entries) }

// Total sums the counts of every present family.
func (d FamilyDistribution) Total() int {
	total := 0
	for _, e := range d.entries {
		total += e.Count
	}
	return total
}

// MarshalJSON writes a JSON object whose keys keep enumeration order.
func (d FamilyDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Family))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Classification splits frequent labels into everyday, exceptional, and
// frequently problematic sounds.
type Classification struct {
	Normal           []string `json:"normaux"`
	Exceptional      []string `json:"exceptionnels"`
	FrequentProblems []string `json:"problematiques_frequents"`
}

// Ratings is the histogram of per-segment grades over the fixed A-G domain.
type Ratings struct {
	Distribution map[catalog.Rating]int     `json:"distribution"`
	Percentages  map[catalog.Rating]float64 `json:"percentages"`
}

// HourStats summarizes the records of one hour of day.
type HourStats struct {
	Hour          int     `json:"hour"`
	MeanDB        float64 `json:"db_mean"`
	MinDB         float64 `json:"db_min"`
	MaxDB         float64 `json:"db_max"`
	Count         int     `json:"count"`
	DominantSound string  `json:"dominant_sound"`
}

// HeatmapRow counts the segments dominated by Label in each hour of day.
type HeatmapRow struct {
	Label  string  `json:"label"`
	Total  int     `json:"total"`
	Counts [24]int `json:"counts"`
}

// Event is a run of consecutive segments sharing a dominant label.
type Event struct {
	Label            string         `json:"label"`
	StartTime        string         `json:"start_time"`
	EndTime          string         `json:"end_time"`
	DurationSegments int            `json:"duration_segments"`
	DurationSeconds  int            `json:"duration_seconds"`
	AvgDB            float64        `json:"avg_db"`
	MaxDB            float64        `json:"max_db"`
	AvgScore         float64        `json:"avg_score"`
	Family           catalog.Family `json:"family"`
	IsProblematic    bool           `json:"is_problematic"`
}
