package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sonalyze/internal/catalog"
)

func newScaleCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "scale",
		Short:       "Show the DPS rating scale and room comfort thresholds",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			steps := cat.Scale().Steps()

			if jsonOutput {
				type stepJSON struct {
					Rating      catalog.Rating `json:"note"`
					MaxDB       float64        `json:"max_db"`
					Example     string         `json:"exemple"`
					Color       string         `json:"couleur"`
					Description string         `json:"description"`
				}
				payload := make([]stepJSON, 0, len(steps))
				for _, s := range steps {
					payload = append(payload, stepJSON{s.Rating, s.MaxDB, s.Example, s.Color, s.Description})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(steps))
			for i, s := range steps {
				bound := "≤ " + strconv.FormatFloat(s.MaxDB, 'f', -1, 64) + " dB"
				if i == len(steps)-1 && i > 0 {
					bound = "> " + strconv.FormatFloat(steps[i-1].MaxDB, 'f', -1, 64) + " dB"
				}
				rows = append(rows, []string{renderRating(s.Rating, colorize), bound, s.Description, s.Example})
			}
			printSection(out, "Échelle DPS", colorize)
			fmt.Fprintln(out, renderTable([]string{"Note", "Niveau", "Description", "Exemple"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))

			printSection(out, "Seuils par pièce", colorize)
			roomRows := make([][]string, 0, len(roomOrder))
			for _, room := range roomOrder {
				t := cat.RoomThreshold(room)
				roomRows = append(roomRows, []string{room, formatDB(t.Good), formatDB(t.Average), formatDB(t.Insufficient)})
			}
			fmt.Fprintln(out, renderTable([]string{"Pièce", "Bon ≤", "Moyen ≤", "Insuffisant"}, roomRows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the scale as JSON")
	return cmd
}

var roomOrder = []string{"chambre", "salon", "bureau", "cuisine", "salle_de_bain", "default"}
