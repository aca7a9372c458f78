package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/interpret"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/textutil"
)

// Sheet names in workbook order.
const (
	SheetGlobal          = "Global"
	SheetDayNight        = "Jour-Nuit"
	SheetTopSounds       = "Top sons"
	SheetFamilies        = "Familles"
	SheetRatings         = "Notes"
	SheetHourly          = "Horaire"
	SheetEvents          = "Événements"
	SheetRecommendations = "Recommandations"
)

type options struct {
	catalog        *catalog.Catalog
	interpretation *interpret.Interpretation
	logger         *slog.Logger
}

// Option customizes a workbook.
type Option func(*options)

// WithCatalog sets the catalog used for grade colours and family names.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) {
		if cat != nil {
			o.catalog = cat
		}
	}
}

// WithInterpretation appends the recommendations sheet.
func WithInterpretation(in *interpret.Interpretation) Option {
	return func(o *options) { o.interpretation = in }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WriteWorkbook builds the workbook for summary and saves it to path.
func WriteWorkbook(path string, summary *analysis.Summary, opts ...Option) error {
	f, err := Build(summary, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	o := resolve(opts)
	logging.NewComponentLogger(o.logger, "export").Info("workbook written",
		logging.String("path", path),
		logging.Int("sheets", len(f.GetSheetList())),
	)
	return nil
}

func resolve(opts []Option) options {
	o := options{catalog: catalog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build assembles the workbook in memory. The caller closes the file.
func Build(summary *analysis.Summary, opts ...Option) (*excelize.File, error) {
	if summary == nil {
		return nil, services.Wrap(services.ErrValidation, "export", "build", "summary required", nil)
	}
	o := resolve(opts)
	f := excelize.NewFile()
	w := &writer{file: f, catalog: o.catalog}

	if err := f.SetSheetName(f.GetSheetName(0), SheetGlobal); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}
	steps := []func(*analysis.Summary) error{
		w.global,
		w.dayNight,
		w.topSounds,
		w.families,
		w.ratings,
		w.hourly,
	}
	if len(summary.Events) > 0 {
		steps = append(steps, w.events)
	}
	for _, step := range steps {
		if err := step(summary); err != nil {
			f.Close()
			return nil, err
		}
	}
	if o.interpretation != nil {
		if err := w.recommendations(o.interpretation); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

type writer struct {
	file    *excelize.File
	catalog *catalog.Catalog
	header  int
	grades  map[catalog.Rating]int
}

func (w *writer) sheet(name string, widths map[string]float64, header ...any) error {
	if name != SheetGlobal {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	if err := w.file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	style, err := w.headerStyle()
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(name, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", name, err)
	}
	for col, width := range widths {
		if err := w.file.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("size %s column %s: %w", name, col, err)
		}
	}
	return w.file.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (w *writer) headerStyle() (int, error) {
	if w.header != 0 {
		return w.header, nil
	}
	id, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2C3E50"}},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	w.header = id
	return id, nil
}

// gradeStyle fills a cell with the colour of the grade on the scale.
func (w *writer) gradeStyle(r catalog.Rating) (int, bool) {
	if w.grades == nil {
		w.grades = make(map[catalog.Rating]int)
	}
	if id, ok := w.grades[r]; ok {
		return id, true
	}
	step, ok := w.catalog.Scale().Step(r)
	if !ok || step.Color == "" {
		return 0, false
	}
	id, err := w.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{step.Color}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return 0, false
	}
	w.grades[r] = id
	return id, true
}

func (w *writer) row(sheet string, index int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, index)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, index, err)
	}
	return nil
}

func (w *writer) colorGrade(sheet string, col, rowIndex int, r catalog.Rating) error {
	style, ok := w.gradeStyle(r)
	if !ok {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, rowIndex)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, cell, cell, style)
}

func (w *writer) familyName(f catalog.Family) string {
	if info, ok := w.catalog.Family(f); ok && info.Label != "" {
		return textutil.DisplayName(info.Label)
	}
	return textutil.DisplayName(string(f))
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
