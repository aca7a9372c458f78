package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sonalyze/internal/logging"
	"sonalyze/internal/measurement"
	"sonalyze/internal/services"
)

type validationReport struct {
	Source   string                `json:"source"`
	Segments int                   `json:"segments"`
	Boxes    []string              `json:"boxes"`
	Start    string                `json:"start"`
	End      string                `json:"end"`
	Warnings []measurement.Warning `json:"warnings"`
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a sensor export without aggregating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx := services.WithStage(ctx.runContext(cmd), "validate")
			col, err := ctx.loadCollection(cmd, logging.WithContext(runCtx, logger), args[0])
			if err != nil {
				return err
			}

			first, last := col.Span()
			report := validationReport{
				Source:   col.Source(),
				Segments: col.Len(),
				Boxes:    col.BoxIDs(),
				Start:    first.Format("2006-01-02 15:04:05"),
				End:      last.Format("2006-01-02 15:04:05"),
				Warnings: col.Warnings(),
			}
			if report.Warnings == nil {
				report.Warnings = []measurement.Warning{}
			}

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				kind := statusOK
				if len(report.Warnings) > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Fichier", kind, report.Source, colorize))
				fmt.Fprintln(out, renderStatusLine("Segments", statusInfo, strconv.Itoa(report.Segments), colorize))
				fmt.Fprintln(out, renderStatusLine("Boîtiers", statusInfo, joinOrDash(report.Boxes), colorize))
				fmt.Fprintln(out, renderStatusLine("Période", statusInfo, report.Start+" → "+report.End, colorize))
				fmt.Fprintln(out, renderStatusLine("Avertissements", kind, strconv.Itoa(len(report.Warnings)), colorize))
				if len(report.Warnings) > 0 {
					rows := make([][]string, 0, len(report.Warnings))
					for _, w := range report.Warnings {
						rows = append(rows, []string{strconv.Itoa(w.Index), string(w.Kind), w.Field, w.Message})
					}
					fmt.Fprintln(out, renderTable([]string{"Segment", "Type", "Champ", "Détail"}, rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
				}
			}

			if strict && len(report.Warnings) > 0 {
				return services.Wrap(services.ErrValidation, "validate", "strict", fmt.Sprintf("%d data quality warnings", len(report.Warnings)), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the export has data quality warnings")
	return cmd
}
