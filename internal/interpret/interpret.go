package interpret

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/services/llm"
)

// Completer is the language model surface the generator needs. *llm.Client
// satisfies it.
type Completer interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ Completer = (*llm.Client)(nil)

// Section names one generated part of the interpretation.
type Section string

const (
	SectionGrade           Section = "grade_interpretation"
	SectionSounds          Section = "sounds_analysis"
	SectionRecommendations Section = "recommendations"
	SectionEmail           Section = "summary_email"
)

// Interpretation is the narrative companion of a Summary.
type Interpretation struct {
	Grade           string          `json:"grade_interpretation"`
	Sounds          string          `json:"sounds_analysis"`
	Recommendations Recommendations `json:"recommendations"`
	Costs           CostRange       `json:"cost_range"`
	Email           string          `json:"summary_email"`
	// Fallbacks lists the sections filled with default text.
	Fallbacks []Section `json:"fallbacks,omitempty"`
}

// UsedFallback reports whether s was filled with default text.
func (i *Interpretation) UsedFallback(s Section) bool {
	for _, f := range i.Fallbacks {
		if f == s {
			return true
		}
	}
	return false
}

// Generator produces interpretations. A nil Completer means every section
// uses default text.
type Generator struct {
	client     Completer
	catalog    *catalog.Catalog
	logger     *slog.Logger
	dayStart   int
	nightStart int
}

// Option customizes a Generator.
type Option func(*Generator)

// WithCatalog sets the catalog whose rating scale is quoted in prompts.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(g *Generator) {
		if cat != nil {
			g.catalog = cat
		}
	}
}

// WithDayWindow sets the hours quoted for the day/night split.
func WithDayWindow(dayStart, nightStart int) Option {
	return func(g *Generator) {
		g.dayStart = dayStart
		g.nightStart = nightStart
	}
}

// New constructs a Generator.
func New(client Completer, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:     client,
		catalog:    catalog.Default(),
		logger:     logging.NewComponentLogger(logger, "interpret"),
		dayStart:   7,
		nightStart: 22,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds every section for summary. Model failures never surface as
// errors; only context cancellation and a missing summary do.
func (g *Generator) Generate(ctx context.Context, summary *analysis.Summary, housing Housing) (*Interpretation, error) {
	if summary == nil {
		return nil, services.Wrap(services.ErrValidation, "interpret", "generate", "summary required", nil)
	}
	ctx = services.WithStage(ctx, "interpret")
	started := time.Now()
	if g.client == nil {
		g.logger.Info("language model not configured, using default texts",
			logging.Args(logging.DecisionAttrs("interpretation_source", "defaults", "llm disabled or api key missing")...)...)
	}

	out := &Interpretation{}
	note := func(s Section, fallback bool) {
		if fallback {
			out.Fallbacks = append(out.Fallbacks, s)
		}
	}

	var fallback bool
	var err error
	if out.Grade, fallback, err = g.Grade(ctx, summary, housing); err != nil {
		return nil, err
	}
	note(SectionGrade, fallback)

	if out.Sounds, fallback, err = g.Sounds(ctx, summary); err != nil {
		return nil, err
	}
	note(SectionSounds, fallback)

	if out.Recommendations, fallback, err = g.Recommend(ctx, summary, housing); err != nil {
		return nil, err
	}
	note(SectionRecommendations, fallback)

	out.Costs = TotalCosts(out.Recommendations)

	if out.Email, fallback, err = g.Email(ctx, summary, housing, out.Costs, nil); err != nil {
		return nil, err
	}
	note(SectionEmail, fallback)

	logging.WithContext(ctx, g.logger).Info("interpretation generated",
		logging.Bool("llm_enabled", g.client != nil),
		logging.Int("fallback_sections", len(out.Fallbacks)),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("cost_min", out.Costs.Min),
		logging.Int("cost_max", out.Costs.Max),
	)
	return out, nil
}

// Grade explains the overall letter grade. The bool reports a fallback.
func (g *Generator) Grade(ctx context.Context, summary *analysis.Summary, housing Housing) (string, bool, error) {
	return g.text(ctx, SectionGrade, g.gradePrompt(summary, housing), func() string { return defaultGradeText(summary) })
}

// Sounds describes the dominant sound sources.
func (g *Generator) Sounds(ctx context.Context, summary *analysis.Summary) (string, bool, error) {
	return g.text(ctx, SectionSounds, g.soundsPrompt(summary), func() string { return defaultSoundsText(summary) })
}

// Email drafts the client summary email. selected lists the solutions the
// client retained, if any.
func (g *Generator) Email(ctx context.Context, summary *analysis.Summary, housing Housing, costs CostRange, selected []string) (string, bool, error) {
	return g.text(ctx, SectionEmail, g.emailPrompt(summary, housing, costs, selected), func() string { return defaultEmailText(summary, costs) })
}

// Recommend asks for per-element advice. Elements the model omits are filled
// from DefaultRecommendations; a response with no usable element counts as a
// fallback.
func (g *Generator) Recommend(ctx context.Context, summary *analysis.Summary, housing Housing) (Recommendations, bool, error) {
	defaults := DefaultRecommendations(summary.Global.Rating, summary)
	if g.client == nil {
		return defaults, true, nil
	}
	content, err := g.client.CompleteJSON(ctx, systemPrompt, g.recommendationsPrompt(summary, housing))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Recommendations{}, false, ctxErr
		}
		g.warnFallback(ctx, SectionRecommendations, err)
		return defaults, true, nil
	}
	var recs Recommendations
	if err := llm.DecodeLLMJSON(content, &recs); err != nil {
		g.warnFallback(ctx, SectionRecommendations, services.Wrap(services.ErrExternalTool, "interpret", "decode recommendations", "invalid JSON from model", err))
		return defaults, true, nil
	}
	merged, provided := mergeRecommendations(recs, defaults)
	if provided == 0 {
		g.warnFallback(ctx, SectionRecommendations, services.Wrap(services.ErrExternalTool, "interpret", "decode recommendations", "no building element in model response", nil))
		return defaults, true, nil
	}
	return merged, false, nil
}

func (g *Generator) text(ctx context.Context, section Section, prompt string, fallback func() string) (string, bool, error) {
	if g.client == nil {
		return fallback(), true, nil
	}
	content, err := g.client.CompleteText(ctx, systemPrompt, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		g.warnFallback(ctx, section, err)
		return fallback(), true, nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		g.warnFallback(ctx, section, errors.New("empty model response"))
		return fallback(), true, nil
	}
	return content, false, nil
}

func (g *Generator) warnFallback(ctx context.Context, section Section, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, g.logger), "language model call failed, using default text", "llm_fallback",
		logging.String("section", string(section)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "report section uses generic wording"),
	)
}
