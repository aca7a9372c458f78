package interpret_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"sonalyze/internal/catalog"
	"sonalyze/internal/interpret"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/testsupport"
)

type fakeCompleter struct {
	mu      sync.Mutex
	text    func(ctx context.Context, prompt string) (string, error)
	json    func(ctx context.Context, prompt string) (string, error)
	prompts []string
}

func (f *fakeCompleter) record(prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeCompleter) CompleteText(ctx context.Context, _, prompt string) (string, error) {
	f.record(prompt)
	return f.text(ctx, prompt)
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, _, prompt string) (string, error) {
	f.record(prompt)
	return f.json(ctx, prompt)
}

func (f *fakeCompleter) promptContaining(substr string) string {
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			return p
		}
	}
	return ""
}

func TestGenerateWithoutClientUsesDefaults(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	gen := interpret.New(nil, logging.NewNop())

	out, err := gen.Generate(context.Background(), summary, interpret.Housing{})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for _, s := range []interpret.Section{interpret.SectionGrade, interpret.SectionSounds, interpret.SectionRecommendations, interpret.SectionEmail} {
		if !out.UsedFallback(s) {
			t.Fatalf("expected fallback for %s, got %v", s, out.Fallbacks)
		}
	}
	for _, want := range []string{"note D", "50 dB", "confort acoustique moyen", "jour (30 dB)", "nuit (90 dB)"} {
		if !strings.Contains(out.Grade, want) {
			t.Fatalf("grade text missing %q:\n%s", want, out.Grade)
		}
	}
	if !strings.Contains(out.Sounds, `"Vehicle"`) {
		t.Fatalf("sounds text should name the main sound:\n%s", out.Sounds)
	}
	if out.Recommendations.Window.Priority != "haute" {
		t.Fatalf("heavy traffic should raise window priority, got %q", out.Recommendations.Window.Priority)
	}
	if out.Costs != (interpret.CostRange{Min: 1420, Max: 4100}) {
		t.Fatalf("unexpected costs %+v", out.Costs)
	}
	for _, want := range []string{"Objet : Votre diagnostic de performance sonore - Note D", "entre 1 420 € et 4 100 €", "L'équipe Sonalyze"} {
		if !strings.Contains(out.Email, want) {
			t.Fatalf("email missing %q:\n%s", want, out.Email)
		}
	}
}

func TestGenerateUsesModelOutput(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	fake := &fakeCompleter{
		text: func(context.Context, string) (string, error) { return "  Texte du modèle.  ", nil },
		json: func(context.Context, string) (string, error) {
			return "```json\n" + `{"fenetre": {"priorite": "haute", "points_positifs": "Cadres sains", "probleme": "Vitrage simple",
				"solutions": [{"nom": "Survitrage", "description": "Ajout", "cout_min": 400, "cout_max": "1 200 €", "impact": "-10 dB", "difficulte": "moyen"}]}}` + "\n```", nil
		},
	}
	gen := interpret.New(fake, logging.NewNop())

	out, err := gen.Generate(context.Background(), summary, interpret.Housing{Type: "Maison", Room: "chambre", ClientName: "Jean Dupont"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(out.Fallbacks) != 0 {
		t.Fatalf("expected no fallbacks, got %v", out.Fallbacks)
	}
	if out.Grade != "Texte du modèle." || out.Email != "Texte du modèle." {
		t.Fatalf("expected trimmed model text, got %q / %q", out.Grade, out.Email)
	}
	window := out.Recommendations.Window
	if window.Problem != "Vitrage simple" || len(window.Solutions) != 1 || window.Solutions[0].CostMax != 1200 {
		t.Fatalf("unexpected window advice %+v", window)
	}
	if out.Recommendations.Door.Priority != "moyenne" || len(out.Recommendations.Door.Solutions) != 2 {
		t.Fatalf("missing elements should come from defaults, got %+v", out.Recommendations.Door)
	}
	// 400 + wall 100 + door 520 + ceiling 0 + floor 600 + ventilation 50
	if out.Costs.Min != 1670 {
		t.Fatalf("unexpected cost min %d", out.Costs.Min)
	}

	grade := fake.promptContaining("Note globale : D\n- Niveau sonore moyen")
	if grade == "" {
		t.Fatalf("grade prompt not sent: %v", fake.prompts)
	}
	for _, want := range []string{"- Type : Maison", "Pièce analysée : chambre", "Moyenne jour (7h-22h) : 30.0 dB", "Moyenne nuit (22h-7h) : 90.0 dB", "- G (>100 dB)"} {
		if !strings.Contains(grade, want) {
			t.Fatalf("grade prompt missing %q:\n%s", want, grade)
		}
	}
	if p := fake.promptContaining("Problèmes identifiés"); !strings.Contains(p, "bruit de circulation important") {
		t.Fatalf("recommendations prompt should flag traffic:\n%s", p)
	}
	if p := fake.promptContaining("TOP SONS"); !strings.Contains(p, "- Vehicle: 66.7% du temps") {
		t.Fatalf("sounds prompt should list the ranking:\n%s", p)
	}
	if p := fake.promptContaining("Rédige un email"); !strings.Contains(p, "- Nom : Jean Dupont") || !strings.Contains(p, "entre 1 670 € et") {
		t.Fatalf("email prompt should carry client and costs:\n%s", p)
	}
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	failure := services.Wrap(services.ErrExternalTool, "llm", "complete", "status 500", nil)
	fake := &fakeCompleter{
		text: func(context.Context, string) (string, error) { return "", failure },
		json: func(context.Context, string) (string, error) { return "", failure },
	}
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	out, err := interpret.New(fake, logger).Generate(context.Background(), summary, interpret.Housing{})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(out.Fallbacks) != 4 {
		t.Fatalf("expected every section to fall back, got %v", out.Fallbacks)
	}
	if !strings.HasPrefix(out.Grade, "Votre logement obtient la note D") {
		t.Fatalf("expected default grade text, got %q", out.Grade)
	}

	warnings := 0
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if payload["level"] == "warn" {
			warnings++
			if payload[logging.FieldEventType] != "llm_fallback" || payload[logging.FieldComponent] != "interpret" {
				t.Fatalf("unexpected warning payload %v", payload)
			}
		}
	}
	if warnings != 4 {
		t.Fatalf("expected 4 fallback warnings, got %d:\n%s", warnings, buf.String())
	}
}

func TestRecommendFallsBackOnInvalidJSON(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "Je ne peux pas répondre."},
		{"no elements", `{"cuisine": {"priorite": "haute"}}`},
		{"bad cost", `{"fenetre": {"priorite": "haute", "solutions": [{"nom": "x", "cout_min": "beaucoup"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{json: func(context.Context, string) (string, error) { return tt.payload, nil }}
			recs, fallback, err := interpret.New(fake, logging.NewNop()).Recommend(context.Background(), summary, interpret.Housing{})
			if err != nil {
				t.Fatalf("Recommend returned error: %v", err)
			}
			if !fallback {
				t.Fatal("expected fallback")
			}
			if recs.Window.Solutions[0].Name != "Joints d'étanchéité" {
				t.Fatalf("expected default window advice, got %+v", recs.Window)
			}
		})
	}
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	summary := testsupport.NewSummary(t, testsupport.ScenarioSegments())
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeCompleter{
		text: func(ctx context.Context, _ string) (string, error) {
			cancel()
			return "", ctx.Err()
		},
	}
	_, err := interpret.New(fake, logging.NewNop()).Generate(ctx, summary, interpret.Housing{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateRequiresSummary(t *testing.T) {
	_, err := interpret.New(nil, nil).Generate(context.Background(), nil, interpret.Housing{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDefaultRecommendationsByGrade(t *testing.T) {
	quiet := testsupport.NewSummary(t, []testsupport.Segment{
		testsupport.NewSegment(10, 0, 25, "Bird"),
		testsupport.NewSegment(11, 0, 28, "Bird"),
	})
	good := interpret.DefaultRecommendations(catalog.RatingB, quiet)
	if good.Window.Priority != "basse" || len(good.Window.Solutions) != 2 {
		t.Fatalf("good grade window advice = %+v", good.Window)
	}
	if good.Ceiling.Solutions[0].Name != "Aucune intervention nécessaire" || good.Ceiling.Solutions[0].CostMax != 0 {
		t.Fatalf("good grade ceiling advice = %+v", good.Ceiling)
	}

	severe := interpret.DefaultRecommendations(catalog.RatingF, quiet)
	if severe.Window.Priority != "moyenne" || len(severe.Window.Solutions) != 3 {
		t.Fatalf("severe grade window advice = %+v", severe.Window)
	}
	if len(severe.Wall.Solutions) != 2 || severe.Ceiling.Solutions[0].Name != "Faux plafond acoustique" {
		t.Fatalf("severe grade should add heavy works: %+v / %+v", severe.Wall, severe.Ceiling)
	}
	costs := interpret.TotalCosts(severe)
	if costs.Min != 150+3000+2100+520+3000+600+50 || costs.Max != 300+6000+5300+1550+8000+1800+150 {
		t.Fatalf("unexpected severe costs %+v", costs)
	}
}

func TestDefaultRecommendationsNeighbourhood(t *testing.T) {
	summary := testsupport.NewSummary(t, []testsupport.Segment{
		testsupport.NewSegment(10, 0, 40, "Speech"),
		testsupport.NewSegment(11, 0, 40, "Speech"),
		testsupport.NewSegment(12, 0, 40, "Bird"),
	})
	recs := interpret.DefaultRecommendations(catalog.RatingC, summary)
	if recs.Wall.Priority != "moyenne" || recs.Ceiling.Priority != "haute" {
		t.Fatalf("neighbourhood noise should raise wall and ceiling: %+v / %+v", recs.Wall, recs.Ceiling)
	}
	if recs.Ceiling.Solutions[0].Name != "Faux plafond acoustique" {
		t.Fatalf("expected ceiling works, got %+v", recs.Ceiling.Solutions)
	}
}

func TestDayOnlyGradeFallback(t *testing.T) {
	summary := testsupport.NewSummary(t, []testsupport.Segment{
		testsupport.NewSegment(10, 0, 40, "Vehicle"),
	})
	text, fallback, err := interpret.New(nil, nil).Grade(context.Background(), summary, interpret.Housing{})
	if err != nil || !fallback {
		t.Fatalf("Grade = %v, %v", fallback, err)
	}
	if !strings.Contains(text, "uniquement la journée") {
		t.Fatalf("expected day-only wording, got %q", text)
	}
}

func TestEurosDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want interpret.Euros
		ok   bool
	}{
		{`150`, 150, true},
		{`149.6`, 150, true},
		{`"1 500 €"`, 1500, true},
		{`"2 000"`, 2000, true},
		{`null`, 0, true},
		{`""`, 0, true},
		{`"environ"`, 0, false},
	}
	for _, tt := range tests {
		var got interpret.Euros
		err := json.Unmarshal([]byte(tt.raw), &got)
		if (err == nil) != tt.ok {
			t.Fatalf("Unmarshal(%s) err = %v, want ok=%v", tt.raw, err, tt.ok)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("Unmarshal(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
