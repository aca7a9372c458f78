package export_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"sonalyze/internal/export"
	"sonalyze/internal/interpret"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/testsupport"
)

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, ref, err)
	}
	return v
}

func TestBuildScenarioWorkbook(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	f, err := export.Build(summary)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer f.Close()

	want := []string{export.SheetGlobal, export.SheetDayNight, export.SheetTopSounds, export.SheetFamilies, export.SheetRatings, export.SheetHourly}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}

	checks := []struct {
		sheet, ref, want string
	}{
		{export.SheetGlobal, "A1", "Indicateur"},
		{export.SheetGlobal, "B2", "3"},
		{export.SheetGlobal, "B6", "50"},
		{export.SheetGlobal, "B10", "D"},
		{export.SheetDayNight, "B2", "30"},
		{export.SheetDayNight, "F2", "B"},
		{export.SheetDayNight, "B3", "90"},
		{export.SheetDayNight, "F3", "F"},
		{export.SheetTopSounds, "C2", "Vehicle"},
		{export.SheetTopSounds, "E2", "66.7"},
		{export.SheetTopSounds, "I2", "Circulation"},
		{export.SheetTopSounds, "J2", "oui"},
		{export.SheetFamilies, "B2", "Circulation"},
		{export.SheetFamilies, "B3", "Animaux"},
		{export.SheetRatings, "A2", "A"},
		{export.SheetRatings, "C2", "1"},
		{export.SheetRatings, "B8", "> 100 dB"},
		{export.SheetHourly, "A2", "10"},
		{export.SheetHourly, "F4", "Dog"},
	}
	for _, c := range checks {
		if v := cell(t, f, c.sheet, c.ref); v != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.ref, v, c.want)
		}
	}
}

func TestBuildLeavesEmptyPeriodBlank(t *testing.T) {
	summary := testsupport.NewSummary(t, []testsupport.Segment{testsupport.NewSegment(9, 0, 42, "Speech")})
	f, err := export.Build(summary)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer f.Close()

	if v := cell(t, f, export.SheetDayNight, "B3"); v != "" {
		t.Fatalf("night mean should be blank, got %q", v)
	}
	if v := cell(t, f, export.SheetDayNight, "E3"); v != "0" {
		t.Fatalf("night count should be 0, got %q", v)
	}
}

func TestBuildAddsEventsSheet(t *testing.T) {
	start := time.Date(2025, 12, 4, 8, 0, 0, 0, time.UTC)
	segments := testsupport.Sequence(start, 9, []float64{60, 62, 64, 40}, []string{"Drill", "Drill", "Drill", "Bird"})
	summary := testsupport.NewSummary(t, segments)

	f, err := export.Build(summary)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(export.SheetEvents); idx < 0 {
		t.Fatalf("expected events sheet in %v", f.GetSheetList())
	}
	if v := cell(t, f, export.SheetEvents, "A2"); v != "Drill" {
		t.Fatalf("event label = %q", v)
	}
	if v := cell(t, f, export.SheetEvents, "E2"); v != "27" {
		t.Fatalf("event duration = %q, want 27", v)
	}
}

func TestWriteWorkbookWithRecommendations(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	in, err := interpret.New(nil, logging.NewNop()).Generate(context.Background(), summary, interpret.Housing{})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exports", "rapport.xlsx")
	if err := export.WriteWorkbook(path, summary, export.WithInterpretation(in)); err != nil {
		t.Fatalf("WriteWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open written workbook: %v", err)
	}
	defer f.Close()

	if v := cell(t, f, export.SheetRecommendations, "A2"); v != "Fenêtres" {
		t.Fatalf("first element = %q", v)
	}
	if v := cell(t, f, export.SheetRecommendations, "C2"); v != "Joints d'étanchéité" {
		t.Fatalf("first solution = %q", v)
	}
	if v := cell(t, f, export.SheetRecommendations, "A12"); v != "Total" {
		t.Fatalf("total label = %q", v)
	}
	if min, max := cell(t, f, export.SheetRecommendations, "E12"), cell(t, f, export.SheetRecommendations, "F12"); min != "1420" || max != "4100" {
		t.Fatalf("totals = %s / %s", min, max)
	}
}

func TestBuildRequiresSummary(t *testing.T) {
	if _, err := export.Build(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
