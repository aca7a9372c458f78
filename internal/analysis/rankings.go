package analysis

import (
	"sonalyze/internal/catalog"
	"sonalyze/internal/measurement"
)

// groupByLabel builds one accumulator per dominant label and returns the
// labels ordered by count descending, then label ascending.
func groupByLabel(records []measurement.Record) ([]string, map[string]*accumulator) {
	groups := make(map[string]*accumulator)
	labels := make([]string, 0)
	for _, r := range records {
		acc, ok := groups[r.DominantLabel]
		if !ok {
			acc = &accumulator{}
			groups[r.DominantLabel] = acc
			labels = append(labels, r.DominantLabel)
		}
		acc.add(r.LevelDB, r.DominantProbability)
	}
	byCountThenLabel(labels, func(label string) int { return groups[label].count })
	return labels, groups
}

// ranking returns the n most frequent dominant labels of records. Percentages
// use len(records) as their base.
func (a *Aggregator) ranking(records []measurement.Record, n int) []SoundRank {
	labels, groups := groupByLabel(records)
	if len(labels) > n {
		labels = labels[:n]
	}
	out := make([]SoundRank, 0, len(labels))
	for _, label := range labels {
		acc := groups[label]
		mean := acc.meanDB()
		out = append(out, SoundRank{
			Label:         label,
			Count:         acc.count,
			Percentage:    percentage(acc.count, len(records)),
			AvgDB:         round1(mean),
			Rating:        a.catalog.Classify(mean),
			AvgScore:      round3(acc.meanScore()),
			Family:        a.catalog.FamilyOf(label),
			IsProblematic: a.catalog.IsProblematic(label),
			IsNormal:      a.catalog.IsNormal(label),
		})
	}
	return out
}

// families groups records by the family of their dominant label. Families
// without records are omitted.
func (a *Aggregator) families(records []measurement.Record) FamilyDistribution {
	known := a.catalog.Families()
	groups := make([]accumulator, len(known))
	for _, r := range records {
		idx := a.catalog.FamilyIndex(a.catalog.FamilyOf(r.DominantLabel))
		if idx < 0 {
			idx = a.catalog.FamilyIndex(catalog.FamilyOther)
		}
		groups[idx].add(r.LevelDB, 0)
	}
	var dist FamilyDistribution
	for i, info := range known {
		acc := groups[i]
		if acc.count == 0 {
			continue
		}
		mean := acc.meanDB()
		dist.entries = append(dist.entries, FamilyStat{
			Family:     info.ID,
			Count:      acc.count,
			Percentage: percentage(acc.count, len(records)),
			AvgDB:      round1(mean),
			Rating:     a.catalog.Classify(mean),
		})
	}
	return dist
}

const (
	frequentProblemPct = 5.0
	commonNeutralPct   = 10.0
)

// classify sorts the most frequent labels into everyday sounds, exceptional
// sounds, and problematic sounds heard often enough to matter.
func (a *Aggregator) classify(records []measurement.Record) Classification {
	out := Classification{
		Normal:           []string{},
		Exceptional:      []string{},
		FrequentProblems: []string{},
	}
	for _, sound := range a.ranking(records, defaultClassificationN) {
		switch {
		case sound.IsNormal:
			out.Normal = append(out.Normal, sound.Label)
		case sound.IsProblematic:
			out.Exceptional = append(out.Exceptional, sound.Label)
			if sound.Percentage > frequentProblemPct {
				out.FrequentProblems = append(out.FrequentProblems, sound.Label)
			}
		case sound.Percentage > commonNeutralPct:
			out.Normal = append(out.Normal, sound.Label)
		default:
			out.Exceptional = append(out.Exceptional, sound.Label)
		}
	}
	if len(out.Normal) > defaultClassificationCap {
		out.Normal = out.Normal[:defaultClassificationCap]
	}
	if len(out.Exceptional) > defaultClassificationCap {
		out.Exceptional = out.Exceptional[:defaultClassificationCap]
	}
	return out
}
