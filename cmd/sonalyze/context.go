package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/clients"
	"sonalyze/internal/config"
	"sonalyze/internal/interpret"
	"sonalyze/internal/logging"
	"sonalyze/internal/measurement"
	"sonalyze/internal/services"
	"sonalyze/internal/services/llm"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	quietFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	catalog *catalog.Catalog
}

func newCommandContext(configFlag, logLevelFlag *string, quietFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		quietFlag:    quietFlag,
		catalog:      catalog.Default(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		effective := *cfg
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			effective.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		logger, err := logging.NewFromConfig(&effective)
		if err != nil {
			c.loggerErr = err
			return
		}
		if c.quietFlag != nil && *c.quietFlag {
			logger = logging.WithLevelOverride(logger, slog.LevelError)
		}
		for _, warning := range cfg.LoadWarnings() {
			logging.WarnWithContext(logger, "dotenv file ignored", "config_dotenv_invalid",
				logging.String("detail", warning),
				logging.String(logging.FieldErrorHint, "use one KEY=value pair per line"),
				logging.String(logging.FieldImpact, "variables from that file are not set"),
			)
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runContext tags the command context with a fresh correlation id.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRequestID(ctx, uuid.NewString())
}

func (c *commandContext) loader(logger *slog.Logger) (*measurement.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return measurement.NewLoader(c.catalog,
		measurement.WithDayWindow(cfg.Analysis.DayStartHour, cfg.Analysis.NightStartHour),
		measurement.WithLogger(logger),
	), nil
}

func (c *commandContext) aggregator(logger *slog.Logger, topN int) (*analysis.Aggregator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = cfg.Analysis.TopN
	}
	return analysis.New(c.catalog,
		analysis.WithTopN(topN),
		analysis.WithEventDetection(cfg.Analysis.MinConsecutiveDetections, cfg.Analysis.SegmentSeconds, cfg.Analysis.MaxEvents),
		analysis.WithLogger(logger),
	), nil
}

// llmClient returns nil when the language model is disabled or has no key.
func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.LLMReady() {
		return nil, nil
	}
	l := cfg.GetLLM()
	return llm.NewClient(llm.Config{
		APIKey:         l.APIKey,
		BaseURL:        l.BaseURL,
		Model:          l.Model,
		Referer:        l.Referer,
		Title:          l.Title,
		TimeoutSeconds: l.TimeoutSeconds,
		Temperature:    l.Temperature,
		MaxTokens:      l.MaxTokens,
	}), nil
}

func (c *commandContext) interpreter(logger *slog.Logger, useLLM bool) (*interpret.Generator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var completer interpret.Completer
	if useLLM {
		client, err := c.llmClient()
		if err != nil {
			return nil, err
		}
		if client != nil {
			completer = client
		}
	}
	return interpret.New(completer, logger,
		interpret.WithCatalog(c.catalog),
		interpret.WithDayWindow(cfg.Analysis.DayStartHour, cfg.Analysis.NightStartHour),
	), nil
}

func (c *commandContext) clientStore(logger *slog.Logger) (*clients.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return clients.NewStore(cfg.Paths.ClientsDir, logger), nil
}

// measurementPath resolves a stored measurement file name against the data
// directory. Absolute paths are returned unchanged.
func (c *commandContext) measurementPath(name string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(cfg.Paths.DataDir, name), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
