package analysis

import (
	"sonalyze/internal/measurement"
)

// hourly returns one entry per hour of day present in records, ascending.
func (a *Aggregator) hourly(records []measurement.Record) []HourStats {
	var buckets [24][]measurement.Record
	for _, r := range records {
		buckets[r.Hour] = append(buckets[r.Hour], r)
	}
	out := make([]HourStats, 0, 24)
	for hour, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		var acc accumulator
		for _, r := range bucket {
			acc.add(r.LevelDB, 0)
		}
		labels, _ := groupByLabel(bucket)
		out = append(out, HourStats{
			Hour:          hour,
			MeanDB:        round1(acc.meanDB()),
			MinDB:         round1(acc.minDB),
			MaxDB:         round1(acc.maxDB),
			Count:         acc.count,
			DominantSound: labels[0],
		})
	}
	return out
}

// heatmap counts, for the most frequent labels, how many segments each
// dominated per hour of day. Rows follow the global ranking order.
func (a *Aggregator) heatmap(records []measurement.Record) []HeatmapRow {
	labels, groups := groupByLabel(records)
	if len(labels) > a.heatmapSize {
		labels = labels[:a.heatmapSize]
	}
	rows := make([]HeatmapRow, len(labels))
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		rows[i] = HeatmapRow{Label: label, Total: groups[label].count}
		index[label] = i
	}
	for _, r := range records {
		if i, ok := index[r.DominantLabel]; ok {
			rows[i].Counts[r.Hour]++
		}
	}
	return rows
}
