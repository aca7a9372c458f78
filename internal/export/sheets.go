package export

import (
	"strconv"

	"sonalyze/internal/analysis"
	"sonalyze/internal/interpret"
)

func (w *writer) global(s *analysis.Summary) error {
	if err := w.sheet(SheetGlobal, map[string]float64{"A": 24, "B": 20}, "Indicateur", "Valeur"); err != nil {
		return err
	}
	g := s.Global
	rows := [][]any{
		{"Segments", g.TotalSegments},
		{"Durée (h)", g.DurationHours},
		{"Début", g.DateStart},
		{"Fin", g.DateEnd},
		{"Niveau moyen (dB)", g.MeanDB},
		{"Niveau min (dB)", g.MinDB},
		{"Niveau max (dB)", g.MaxDB},
		{"Niveau médian (dB)", g.MedianDB},
		{"Note globale", string(g.Rating)},
	}
	for i, values := range rows {
		if err := w.row(SheetGlobal, i+2, values...); err != nil {
			return err
		}
	}
	return w.colorGrade(SheetGlobal, 2, len(rows)+1, g.Rating)
}

func (w *writer) dayNight(s *analysis.Summary) error {
	if err := w.sheet(SheetDayNight, map[string]float64{"A": 12}, "Période", "Moyenne (dB)", "Min (dB)", "Max (dB)", "Segments", "Note"); err != nil {
		return err
	}
	periods := []struct {
		name  string
		stats analysis.PeriodStats
	}{
		{"Jour", s.DayNight.Day},
		{"Nuit", s.DayNight.Night},
	}
	for i, p := range periods {
		grade := ""
		rating, ok := p.stats.Rating()
		if ok {
			grade = string(rating)
		}
		if err := w.row(SheetDayNight, i+2, p.name, optional(p.stats.Mean), optional(p.stats.Min), optional(p.stats.Max), p.stats.Count, grade); err != nil {
			return err
		}
		if ok {
			if err := w.colorGrade(SheetDayNight, 6, i+2, rating); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) topSounds(s *analysis.Summary) error {
	if err := w.sheet(SheetTopSounds, map[string]float64{"A": 10, "C": 34, "I": 16},
		"Période", "Rang", "Son", "Segments", "%", "dB moyen", "Note", "Score moyen", "Famille", "Problématique"); err != nil {
		return err
	}
	groups := []struct {
		name  string
		ranks []analysis.SoundRank
	}{
		{"Global", s.Sounds.Top},
		{"Jour", s.Sounds.TopDay},
		{"Nuit", s.Sounds.TopNight},
	}
	row := 2
	for _, g := range groups {
		for i, r := range g.ranks {
			problematic := ""
			if r.IsProblematic {
				problematic = "oui"
			}
			if err := w.row(SheetTopSounds, row, g.name, i+1, r.Label, r.Count, r.Percentage, r.AvgDB, string(r.Rating), r.AvgScore, w.familyName(r.Family), problematic); err != nil {
				return err
			}
			if err := w.colorGrade(SheetTopSounds, 7, row, r.Rating); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (w *writer) families(s *analysis.Summary) error {
	if err := w.sheet(SheetFamilies, map[string]float64{"A": 10, "B": 18}, "Période", "Famille", "Segments", "%", "dB moyen", "Note"); err != nil {
		return err
	}
	groups := []struct {
		name string
		dist analysis.FamilyDistribution
	}{
		{"Global", s.Sounds.Families},
		{"Jour", s.Sounds.FamiliesDay},
		{"Nuit", s.Sounds.FamiliesNight},
	}
	row := 2
	for _, g := range groups {
		for _, e := range g.dist.Entries() {
			if err := w.row(SheetFamilies, row, g.name, w.familyName(e.Family), e.Count, e.Percentage, e.AvgDB, string(e.Rating)); err != nil {
				return err
			}
			if err := w.colorGrade(SheetFamilies, 6, row, e.Rating); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (w *writer) ratings(s *analysis.Summary) error {
	if err := w.sheet(SheetRatings, map[string]float64{"B": 14, "E": 40}, "Note", "Seuil (dB)", "Segments", "%", "Description"); err != nil {
		return err
	}
	steps := w.catalog.Scale().Steps()
	for i, step := range steps {
		bound := "≤ " + formatDB(step.MaxDB)
		if i == len(steps)-1 && i > 0 {
			bound = "> " + formatDB(steps[i-1].MaxDB)
		}
		r := step.Rating
		if err := w.row(SheetRatings, i+2, string(r), bound, s.Ratings.Distribution[r], s.Ratings.Percentages[r], step.Description); err != nil {
			return err
		}
		if err := w.colorGrade(SheetRatings, 1, i+2, r); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) hourly(s *analysis.Summary) error {
	if err := w.sheet(SheetHourly, map[string]float64{"F": 34}, "Heure", "dB moyen", "dB min", "dB max", "Segments", "Son dominant"); err != nil {
		return err
	}
	for i, h := range s.Hourly {
		if err := w.row(SheetHourly, i+2, h.Hour, h.MeanDB, h.MinDB, h.MaxDB, h.Count, h.DominantSound); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) events(s *analysis.Summary) error {
	if err := w.sheet(SheetEvents, map[string]float64{"A": 30, "B": 18, "C": 18, "H": 16},
		"Son", "Début", "Fin", "Segments", "Durée (s)", "dB moyen", "dB max", "Famille", "Problématique"); err != nil {
		return err
	}
	for i, e := range s.Events {
		problematic := ""
		if e.IsProblematic {
			problematic = "oui"
		}
		if err := w.row(SheetEvents, i+2, e.Label, e.StartTime, e.EndTime, e.DurationSegments, e.DurationSeconds, e.AvgDB, e.MaxDB, w.familyName(e.Family), problematic); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) recommendations(in *interpret.Interpretation) error {
	if err := w.sheet(SheetRecommendations, map[string]float64{"A": 12, "C": 34, "D": 50, "G": 16},
		"Élément", "Priorité", "Solution", "Description", "Coût min (€)", "Coût max (€)", "Impact", "Difficulté"); err != nil {
		return err
	}
	row := 2
	for _, e := range interpret.Elements() {
		advice := in.Recommendations.Get(e)
		for _, sol := range advice.Solutions {
			if err := w.row(SheetRecommendations, row, e.Label(), advice.Priority, sol.Name, sol.Description, int(sol.CostMin), int(sol.CostMax), sol.Impact, sol.Difficulty); err != nil {
				return err
			}
			row++
		}
	}
	return w.row(SheetRecommendations, row+1, "Total", "", "", "", in.Costs.Min, in.Costs.Max)
}

func formatDB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " dB"
}
