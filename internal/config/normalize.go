package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv reads KEY=value pairs from .env in the working directory and
// next to the config file. Variables already set in the environment win.
// Files that fail to parse are skipped and reported.
func loadDotEnv(configPath string) []string {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	var warnings []string
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		// godotenv.Load never overrides existing variables.
		if err := godotenv.Load(candidate); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", candidate, err))
		}
	}
	return warnings
}

var llmKeyEnv = []string{"SONALYZE_LLM_API_KEY", "GROQ_API_KEY", "OPENROUTER_API_KEY"}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ClientsDir) == "" {
		c.Paths.ClientsDir = defaultClientsDir
	}
	if c.Paths.ClientsDir, err = expandPath(c.Paths.ClientsDir); err != nil {
		return fmt.Errorf("paths.clients_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportsDir) == "" {
		c.Paths.ExportsDir = defaultExportsDir
	}
	if c.Paths.ExportsDir, err = expandPath(c.Paths.ExportsDir); err != nil {
		return fmt.Errorf("paths.exports_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.TopN <= 0 {
		c.Analysis.TopN = defaultTopN
	}
	if c.Analysis.MinConsecutiveDetections <= 0 {
		c.Analysis.MinConsecutiveDetections = defaultMinConsecutive
	}
	if c.Analysis.SegmentSeconds <= 0 {
		c.Analysis.SegmentSeconds = defaultSegmentSeconds
	}
	if c.Analysis.MaxEvents <= 0 {
		c.Analysis.MaxEvents = defaultMaxEvents
	}
	c.Analysis.Room = strings.ToLower(strings.TrimSpace(c.Analysis.Room))
	if c.Analysis.Room == "" {
		c.Analysis.Room = defaultRoom
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	// Environment variables take precedence over the config file.
	for _, name := range llmKeyEnv {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			c.LLM.APIKey = strings.TrimSpace(value)
			break
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
