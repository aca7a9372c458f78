package analysis

import (
	"sonalyze/internal/catalog"
	"sonalyze/internal/measurement"
)

// events finds runs of at least minConsecutive consecutive records, in input
// order, that share a dominant label. Segments without detections never
// form an event. At most maxEvents are returned, earliest first.
func (a *Aggregator) events(records []measurement.Record) []Event {
	out := make([]Event, 0)
	start := 0
	for i := 1; i <= len(records); i++ {
		if i < len(records) && records[i].DominantLabel == records[start].DominantLabel {
			continue
		}
		run := records[start:i]
		start = i
		if len(run) < a.minConsecutive || run[0].DominantLabel == catalog.UnknownLabel {
			continue
		}
		out = append(out, a.newEvent(run))
		if len(out) == a.maxEvents {
			break
		}
	}
	return out
}

func (a *Aggregator) newEvent(run []measurement.Record) Event {
	var acc accumulator
	for _, r := range run {
		acc.add(r.LevelDB, r.DominantProbability)
	}
	label := run[0].DominantLabel
	return Event{
		Label:            label,
		StartTime:        run[0].Timestamp.Format(measurement.SensorTimeLayout),
		EndTime:          run[len(run)-1].Timestamp.Format(measurement.SensorTimeLayout),
		DurationSegments: len(run),
		DurationSeconds:  len(run) * a.segmentSeconds,
		AvgDB:            round1(acc.meanDB()),
		MaxDB:            round1(acc.maxDB),
		AvgScore:         round3(acc.meanScore()),
		Family:           a.catalog.FamilyOf(label),
		IsProblematic:    a.catalog.IsProblematic(label),
	}
}
