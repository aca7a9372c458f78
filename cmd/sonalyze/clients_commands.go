package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sonalyze/internal/clients"
	"sonalyze/internal/fileutil"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
)

func newClientsCommand(ctx *commandContext) *cobra.Command {
	clientsCmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage client records",
	}
	clientsCmd.AddCommand(newClientsListCommand(ctx))
	clientsCmd.AddCommand(newClientsShowCommand(ctx))
	clientsCmd.AddCommand(newClientsAddCommand(ctx))
	clientsCmd.AddCommand(newClientsImportCommand(ctx))
	clientsCmd.AddCommand(newClientsAttachCommand(ctx))
	clientsCmd.AddCommand(newClientsStatusCommand(ctx))
	clientsCmd.AddCommand(newClientsStatsCommand(ctx))
	return clientsCmd
}

func (c *commandContext) storeForCommand() (*clients.Store, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return c.clientStore(logger)
}

func newClientsListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var status string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List client records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			var wantStatus clients.Status
			if strings.TrimSpace(status) != "" {
				parsed, ok := clients.ParseStatus(status)
				if !ok {
					return services.Wrap(services.ErrValidation, "clients", "list", fmt.Sprintf("unknown status %q", status), nil)
				}
				wantStatus = parsed
			}
			records, err := store.List()
			if err != nil {
				return err
			}
			filtered := make([]clients.Record, 0, len(records))
			for _, rec := range records {
				if !rec.Matches(search) {
					continue
				}
				if wantStatus != "" && rec.Metadata.Status != wantStatus {
					continue
				}
				filtered = append(filtered, rec)
			}

			if jsonOutput {
				return writeJSON(cmd, filtered)
			}
			out := cmd.OutOrStdout()
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No clients found")
				return nil
			}
			rows := make([][]string, 0, len(filtered))
			for _, rec := range filtered {
				rows = append(rows, []string{
					rec.ID,
					rec.Client.FullName(),
					rec.Housing.City,
					rec.Metadata.Status.Label(),
					measurementMark(rec),
					rec.Metadata.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Client", "Ville", "Statut", "Mesure", "Créé le"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name, city, or address")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (en_attente, analyse_en_cours, termine)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	return cmd
}

func newClientsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <id|file>",
		Short: "Show one client record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, rec)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printSection(out, rec.Client.FullName(), colorize)
			lines := []struct{ label, value string }{
				{"ID", rec.ID},
				{"Fichier", rec.FileName()},
				{"Email", rec.Client.Email},
				{"Téléphone", rec.Client.Phone},
				{"Adresse", strings.TrimSpace(rec.Housing.Address + " " + rec.Housing.PostalCode + " " + rec.Housing.City)},
				{"Logement", strings.TrimSpace(rec.Housing.Type + " " + rec.Housing.Layout)},
				{"Étage", rec.Housing.Floor},
				{"Mesure", rec.Metadata.MeasurementFile},
				{"Créé le", rec.Metadata.CreatedAt.Format("2006-01-02 15:04:05")},
				{"Modifié le", rec.Metadata.UpdatedAt.Format("2006-01-02 15:04:05")},
			}
			for _, l := range lines {
				fmt.Fprintln(out, renderStatusLine(l.label, statusInfo, firstNonEmpty(l.value, "-"), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Statut", statusKindFor(rec.Metadata.Status), rec.Metadata.Status.Label(), colorize))
			if len(rec.Rooms) > 0 {
				rows := make([][]string, 0, len(rec.Rooms))
				for _, room := range rec.Rooms {
					surface := "-"
					if room.SurfaceM2 != nil {
						surface = strconv.FormatFloat(*room.SurfaceM2, 'f', -1, 64)
					}
					rows = append(rows, []string{room.Name, room.Type, surface})
				}
				fmt.Fprintln(out, renderTable([]string{"Pièce", "Type", "Surface (m²)"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
			}
			if rec.Comments != "" {
				fmt.Fprintln(out, rec.Comments)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the record as JSON")
	return cmd
}

func newClientsAddCommand(ctx *commandContext) *cobra.Command {
	var rec clients.Record
	var surface float64
	var measurement string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client record",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			if surface > 0 {
				rec.Housing.SurfaceM2 = &surface
			}
			rec.Metadata.Source = "cli"
			runCtx := ctx.runContext(cmd)
			if strings.TrimSpace(measurement) != "" {
				name, err := ctx.importMeasurement(cmd, measurement)
				if err != nil {
					return err
				}
				rec.Metadata.MeasurementFile = name
				rec.Metadata.Status = clients.StatusInProgress
			}
			created, err := store.Create(runCtx, rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created client %s (%s)\n", created.ID, created.FileName())
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&rec.Client.LastName, "nom", "", "Last name")
	flags.StringVar(&rec.Client.FirstName, "prenom", "", "First name")
	flags.StringVar(&rec.Client.Email, "email", "", "Email address")
	flags.StringVar(&rec.Client.Phone, "telephone", "", "Phone number")
	flags.StringVar(&rec.Housing.Name, "logement", "", "Housing label")
	flags.StringVar(&rec.Housing.Address, "adresse", "", "Street address")
	flags.StringVar(&rec.Housing.PostalCode, "code-postal", "", "Postal code")
	flags.StringVar(&rec.Housing.City, "ville", "", "City")
	flags.StringVar(&rec.Housing.Type, "type", "", "Housing type (Appartement, Maison)")
	flags.StringVar(&rec.Housing.Floor, "etage", "", "Floor (RDC, 1-5, 6+)")
	flags.StringVar(&rec.Housing.Layout, "typologie", "", "Layout (Studio, T1-T5, T6+)")
	flags.Float64Var(&surface, "surface", 0, "Total surface in m²")
	flags.StringVar(&rec.Comments, "commentaires", "", "Free-form comments")
	flags.StringVar(&measurement, "measurement", "", "Sensor export to attach")
	_ = cmd.MarkFlagRequired("nom")
	_ = cmd.MarkFlagRequired("prenom")
	return cmd
}

func newClientsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Create a client record from an intake form JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			reader := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return services.Wrap(services.ErrNotFound, "clients", "import", "open form", err)
				}
				defer f.Close()
				reader = f
			}
			created, err := store.Import(ctx.runContext(cmd), reader)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported client %s (%s)\n", created.ID, created.FileName())
			return nil
		},
	}
}

func newClientsAttachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id|file> <measurement>",
		Short: "Validate a sensor export and attach it to a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			if _, err := store.Get(args[0]); err != nil {
				return err
			}
			name, err := ctx.importMeasurement(cmd, args[1])
			if err != nil {
				return err
			}
			rec, err := store.AttachMeasurement(ctx.runContext(cmd), args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to %s (%s)\n", name, rec.Client.FullName(), rec.Metadata.Status.Label())
			return nil
		},
	}
}

// importMeasurement validates path as a sensor export and copies it into the
// data directory unless it already lives there. It returns the name relative
// to the data directory.
func (c *commandContext) importMeasurement(cmd *cobra.Command, path string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "-" {
		return "", services.Wrap(services.ErrValidation, "attach", "resolve measurement", "attached exports must be files, not stdin", nil)
	}
	runCtx := services.WithStage(c.runContext(cmd), "attach")
	col, err := c.loadCollection(cmd, logging.WithContext(runCtx, logger), path)
	if err != nil {
		return "", err
	}

	dataDir := cfg.Paths.DataDir
	if fileutil.Within(dataDir, path) {
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(rel), nil
	}
	name, err := fileutil.FreeName(dataDir, filepath.Base(path))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "attach", "copy measurement", "choose a file name in the data directory", err)
	}
	if err := fileutil.CopyVerified(path, filepath.Join(dataDir, name)); err != nil {
		return "", services.Wrap(services.ErrTransient, "attach", "copy measurement", "copy into data directory", err)
	}
	logging.WithContext(runCtx, logger).Info("measurement copied",
		logging.String("source", path),
		logging.String("file", name),
		logging.Int("segments", col.Len()),
		logging.Int("warnings", len(col.Warnings())),
	)
	return name, nil
}

func newClientsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id|file> <status>",
		Short: "Set the workflow status of a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := clients.ParseStatus(args[1])
			if !ok {
				return services.Wrap(services.ErrValidation, "clients", "status", fmt.Sprintf("unknown status %q", args[1]), nil)
			}
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			rec, err := store.SetStatus(ctx.runContext(cmd), args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", rec.Client.FullName(), rec.Metadata.Status.Label())
			return nil
		},
	}
}

func newClientsStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count clients per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.storeForCommand()
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Total", clients.StatusPending.Label(), clients.StatusInProgress.Label(), clients.StatusDone.Label(), "Avec mesure"},
				[][]string{{strconv.Itoa(st.Total), strconv.Itoa(st.Pending), strconv.Itoa(st.InProgress), strconv.Itoa(st.Done), strconv.Itoa(st.WithMeasurement)}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the counts as JSON")
	return cmd
}

func measurementMark(rec clients.Record) string {
	if rec.HasMeasurement() {
		return "oui"
	}
	return "non"
}

func statusKindFor(s clients.Status) statusKind {
	switch s {
	case clients.StatusDone:
		return statusOK
	case clients.StatusInProgress:
		return statusWarn
	default:
		return statusInfo
	}
}
