package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/textutil"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var topN int
	var hourly bool

	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Aggregate a sensor export and print the acoustic summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := ctx.runAnalysis(cmd, args[0], topN)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, run.summary)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printSummary(out, ctx.catalog, run.summary, colorize)
			if hourly {
				printHourly(out, run.summary, colorize)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	cmd.Flags().IntVar(&topN, "top", 0, "Size of the sound rankings (default from config)")
	cmd.Flags().BoolVar(&hourly, "hourly", false, "Include the hour-of-day profile")
	return cmd
}

func printSummary(out io.Writer, cat *catalog.Catalog, s *analysis.Summary, colorize bool) {
	g := s.Global
	printSection(out, "Global", colorize)
	fmt.Fprintln(out, renderStatusLine("Note globale", ratingKind(g.Rating), fmt.Sprintf("%s (%s dB)", renderRating(g.Rating, false), formatDB(g.MeanDB)), colorize))
	fmt.Fprintln(out, renderTable(
		[]string{"Segments", "Durée (h)", "Début", "Fin", "Moy.", "Min", "Max", "Médiane"},
		[][]string{{
			textutil.GroupThousands(g.TotalSegments),
			strconv.FormatFloat(g.DurationHours, 'f', 2, 64),
			g.DateStart,
			g.DateEnd,
			formatDB(g.MeanDB),
			formatDB(g.MinDB),
			formatDB(g.MaxDB),
			formatDB(g.MedianDB),
		}},
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))

	printSection(out, "Jour / Nuit", colorize)
	periodRow := func(name string, p analysis.PeriodStats) []string {
		rating, _ := p.Rating()
		return []string{name, strconv.Itoa(p.Count), formatOptionalDB(p.Mean), formatOptionalDB(p.Min), formatOptionalDB(p.Max), renderRating(rating, colorize)}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Période", "Segments", "Moy.", "Min", "Max", "Note"},
		[][]string{periodRow("Jour", s.DayNight.Day), periodRow("Nuit", s.DayNight.Night)},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))

	printRanking(out, "Sons dominants", s.Sounds.Top, cat, colorize)
	printRanking(out, "Sons dominants (jour)", s.Sounds.TopDay, cat, colorize)
	printRanking(out, "Sons dominants (nuit)", s.Sounds.TopNight, cat, colorize)

	printSection(out, "Familles", colorize)
	rows := make([][]string, 0, s.Sounds.Families.Len())
	for _, f := range s.Sounds.Families.Entries() {
		rows = append(rows, []string{familyLabel(cat, f.Family), strconv.Itoa(f.Count), formatPercent(f.Percentage), formatDB(f.AvgDB), renderRating(f.Rating, colorize)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Famille", "Segments", "Part", "Moy. dB", "Note"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))

	class := s.Sounds.Classification
	printSection(out, "Classification", colorize)
	fmt.Fprintln(out, renderStatusLine("Sons normaux", statusOK, joinOrDash(class.Normal), colorize))
	fmt.Fprintln(out, renderStatusLine("Sons exceptionnels", statusInfo, joinOrDash(class.Exceptional), colorize))
	problemKind := statusOK
	if len(class.FrequentProblems) > 0 {
		problemKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Problèmes fréquents", problemKind, joinOrDash(class.FrequentProblems), colorize))

	printSection(out, "Répartition des notes", colorize)
	ratingRows := make([][]string, 0, len(catalog.Ratings()))
	for _, r := range catalog.Ratings() {
		ratingRows = append(ratingRows, []string{renderRating(r, colorize), strconv.Itoa(s.Ratings.Distribution[r]), formatPercent(s.Ratings.Percentages[r])})
	}
	fmt.Fprintln(out, renderTable([]string{"Note", "Segments", "Part"}, ratingRows, []columnAlignment{alignLeft, alignRight, alignRight}))

	if len(s.Events) > 0 {
		printSection(out, "Événements", colorize)
		eventRows := make([][]string, 0, len(s.Events))
		for _, e := range s.Events {
			eventRows = append(eventRows, []string{e.Label, e.StartTime, e.EndTime, strconv.Itoa(e.DurationSeconds), formatDB(e.AvgDB), formatDB(e.MaxDB), problemMark(e.IsProblematic)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Son", "Début", "Fin", "Durée (s)", "Moy. dB", "Max dB", "Gênant"},
			eventRows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		))
	}
}

func printRanking(out io.Writer, title string, ranks []analysis.SoundRank, cat *catalog.Catalog, colorize bool) {
	if len(ranks) == 0 {
		return
	}
	printSection(out, title, colorize)
	rows := make([][]string, 0, len(ranks))
	for i, r := range ranks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Label,
			strconv.Itoa(r.Count),
			formatPercent(r.Percentage),
			formatDB(r.AvgDB),
			renderRating(r.Rating, colorize),
			familyLabel(cat, r.Family),
			problemMark(r.IsProblematic),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Son", "Segments", "Part", "Moy. dB", "Note", "Famille", "Gênant"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
}

func printHourly(out io.Writer, s *analysis.Summary, colorize bool) {
	printSection(out, "Profil horaire", colorize)
	rows := make([][]string, 0, len(s.Hourly))
	for _, h := range s.Hourly {
		rows = append(rows, []string{fmt.Sprintf("%02dh", h.Hour), strconv.Itoa(h.Count), formatDB(h.MeanDB), formatDB(h.MinDB), formatDB(h.MaxDB), h.DominantSound})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Heure", "Segments", "Moy.", "Min", "Max", "Son dominant"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}

func familyLabel(cat *catalog.Catalog, f catalog.Family) string {
	if info, ok := cat.Family(f); ok {
		return textutil.DisplayName(info.Label)
	}
	return textutil.DisplayName(string(f))
}

func problemMark(problematic bool) string {
	if problematic {
		return "oui"
	}
	return ""
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
