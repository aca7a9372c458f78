package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/clients"
	"sonalyze/internal/export"
	"sonalyze/internal/interpret"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/textutil"
)

type reportOutput struct {
	Client         string                    `json:"client_id,omitempty"`
	Room           string                    `json:"room"`
	RoomStatus     catalog.RoomStatus        `json:"room_status"`
	Summary        *analysis.Summary         `json:"summary"`
	Interpretation *interpret.Interpretation `json:"interpretation"`
	Workbook       string                    `json:"workbook,omitempty"`
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var clientRef string
	var xlsxPath string
	var room string
	var noLLM bool
	var jsonOutput bool
	var markDone bool

	cmd := &cobra.Command{
		Use:   "report [file|-]",
		Short: "Analyze an export and write the interpreted diagnostic",
		Long: "Analyze a sensor export, generate the narrative interpretation, and optionally\n" +
			"write an xlsx workbook. With --client the export attached to the client record is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var record *clients.Record
			var store *clients.Store
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			if ref := strings.TrimSpace(clientRef); ref != "" {
				store, err = ctx.clientStore(logger)
				if err != nil {
					return err
				}
				rec, err := store.Get(ref)
				if err != nil {
					return err
				}
				record = &rec
				if source == "" {
					if !rec.HasMeasurement() {
						return services.Wrap(services.ErrValidation, "report", "resolve measurement",
							fmt.Sprintf("client %s has no attached measurement file", rec.Client.FullName()), nil)
					}
					if source, err = ctx.measurementPath(rec.Metadata.MeasurementFile); err != nil {
						return err
					}
				}
			}
			if source == "" {
				return errors.New("a measurement file or --client is required")
			}

			run, err := ctx.runAnalysis(cmd, source, 0)
			if err != nil {
				return err
			}
			runCtx := services.WithStage(run.ctx, "report")
			if record != nil {
				runCtx = services.WithClientID(runCtx, record.ID)
			}

			housing := interpret.Housing{Room: firstNonEmpty(room, cfg.Analysis.Room)}
			if record != nil {
				housing = housingFromRecord(*record, housing.Room)
			}

			generator, err := ctx.interpreter(logger, !noLLM)
			if err != nil {
				return err
			}
			interpretation, err := generator.Generate(runCtx, run.summary, housing)
			if err != nil {
				return err
			}

			out := reportOutput{
				Room:           housing.Room,
				RoomStatus:     ctx.catalog.RoomStatus(run.summary.Global.MeanDB, housing.Room),
				Summary:        run.summary,
				Interpretation: interpretation,
			}
			if record != nil {
				out.Client = record.ID
			}

			if target := strings.TrimSpace(xlsxPath); target != "" {
				target = resolveExportPath(cfg.Paths.ExportsDir, target, record)
				err := export.WriteWorkbook(target, run.summary,
					export.WithCatalog(ctx.catalog),
					export.WithInterpretation(interpretation),
					export.WithLogger(logging.WithContext(runCtx, logger)),
				)
				if err != nil {
					return err
				}
				out.Workbook = target
			}

			if markDone && store != nil && record != nil {
				if _, err := store.SetStatus(runCtx, record.ID, clients.StatusDone); err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			printReport(cmd.OutOrStdout(), ctx.catalog, out, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientRef, "client", "", "Client id or file name whose attached export should be analyzed")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an xlsx workbook (bare names go to paths.exports_dir, \"auto\" derives one)")
	cmd.Flags().StringVar(&room, "room", "", "Room type for the comfort verdict (chambre, salon, bureau, ...)")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Skip the language model and use default texts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print summary and interpretation as JSON")
	cmd.Flags().BoolVar(&markDone, "mark-done", false, "Mark the client as done after a successful report")
	return cmd
}

// housingFromRecord maps a client record onto the interpretation context.
func housingFromRecord(rec clients.Record, room string) interpret.Housing {
	if room == "" && len(rec.Rooms) > 0 {
		room = firstNonEmpty(rec.Rooms[0].Type, rec.Rooms[0].Name)
	}
	return interpret.Housing{
		ClientName: rec.Client.FullName(),
		Address:    rec.Housing.Address,
		Type:       rec.Housing.Type,
		Floor:      rec.Housing.Floor,
		Room:       room,
		City:       rec.Housing.City,
	}
}

func resolveExportPath(exportsDir, target string, record *clients.Record) string {
	if target == "auto" {
		name := "rapport"
		if record != nil {
			name = record.Client.LastName + "_" + record.Client.FirstName
		}
		stamp := time.Now().Format("20060102_150405")
		return filepath.Join(exportsDir, fmt.Sprintf("%s_%s.xlsx", textutil.SanitizeFileName(name), stamp))
	}
	if !strings.ContainsRune(target, filepath.Separator) {
		target = filepath.Join(exportsDir, target)
	}
	if filepath.Ext(target) == "" {
		target += ".xlsx"
	}
	return target
}

func printReport(w io.Writer, cat *catalog.Catalog, out reportOutput, colorize bool) {
	printSummary(w, cat, out.Summary, colorize)

	roomKind := statusOK
	switch out.RoomStatus {
	case catalog.RoomAverage:
		roomKind = statusWarn
	case catalog.RoomInsufficient:
		roomKind = statusError
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderStatusLine("Confort ("+firstNonEmpty(out.Room, "pièce")+")", roomKind, string(out.RoomStatus), colorize))

	in := out.Interpretation
	printSection(w, "Interprétation de la note", colorize)
	fmt.Fprintln(w, in.Grade)
	printSection(w, "Analyse des sons", colorize)
	fmt.Fprintln(w, in.Sounds)

	printSection(w, "Recommandations", colorize)
	var rows [][]string
	for _, e := range interpret.Elements() {
		advice := in.Recommendations.Get(e)
		if len(advice.Solutions) == 0 {
			rows = append(rows, []string{e.Label(), advice.Priority, firstNonEmpty(advice.Problem, advice.Positives), "", ""})
			continue
		}
		for i, s := range advice.Solutions {
			label, priority, problem := "", "", ""
			if i == 0 {
				label, priority, problem = e.Label(), advice.Priority, advice.Problem
			}
			rows = append(rows, []string{label, priority, problem, s.Name, costLabel(int(s.CostMin), int(s.CostMax))})
		}
	}
	fmt.Fprintln(w, tableSpec{
		headers: []string{"Élément", "Priorité", "Constat", "Solution", "Coût"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		footer:  []string{"Total", "", "", "", costLabel(in.Costs.Min, in.Costs.Max)},
	}.render())

	printSection(w, "Email de synthèse", colorize)
	fmt.Fprintln(w, in.Email)

	if len(in.Fallbacks) > 0 {
		sections := make([]string, 0, len(in.Fallbacks))
		for _, s := range in.Fallbacks {
			sections = append(sections, string(s))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderStatusLine("Textes par défaut", statusWarn, strings.Join(sections, ", "), colorize))
	}
	if out.Workbook != "" {
		fmt.Fprintln(w, renderStatusLine("Classeur", statusOK, out.Workbook, colorize))
	}
}

func costLabel(min, max int) string {
	if min == 0 && max == 0 {
		return "-"
	}
	return textutil.GroupThousands(min) + " - " + textutil.GroupThousands(max) + " €"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
