package analysis

import (
	"math"
	"sort"
)

// accumulator collects the running aggregates of one group.
type accumulator struct {
	count    int
	sumDB    float64
	minDB    float64
	maxDB    float64
	sumScore float64
}

func (a *accumulator) add(db, score float64) {
	if a.count == 0 || db < a.minDB {
		a.minDB = db
	}
	if a.count == 0 || db > a.maxDB {
		a.maxDB = db
	}
	a.count++
	a.sumDB += db
	a.sumScore += score
}

func (a *accumulator) meanDB() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sumDB / float64(a.count)
}

func (a *accumulator) meanScore() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sumScore / float64(a.count)
}

func round1(v float64) float64 { return roundTo(v, 1) }

func round3(v float64) float64 { return roundTo(v, 3) }

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) / float64(total) * 100)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func ptr(v float64) *float64 { return &v }

// byCountThenLabel orders label counts descending, breaking ties by label.
func byCountThenLabel(labels []string, counts func(string) int) {
	sort.SliceStable(labels, func(i, j int) bool {
		ci, cj := counts(labels[i]), counts(labels[j])
		if ci != cj {
			return ci > cj
		}
		return labels[i] < labels[j]
	})
}
