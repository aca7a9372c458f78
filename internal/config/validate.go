package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if err := ensureHour("analysis.day_start_hour", a.DayStartHour); err != nil {
		return err
	}
	if err := ensureHour("analysis.night_start_hour", a.NightStartHour); err != nil {
		return err
	}
	if a.DayStartHour == a.NightStartHour {
		return errors.New("analysis.day_start_hour and analysis.night_start_hour must differ")
	}
	return ensurePositive([]positiveField{
		{"analysis.top_n", a.TopN},
		{"analysis.min_consecutive_detections", a.MinConsecutiveDetections},
		{"analysis.segment_seconds", a.SegmentSeconds},
		{"analysis.max_events", a.MaxEvents},
	})
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL, got %q", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensureHour(key string, value int) error {
	if value < 0 || value > 23 {
		return fmt.Errorf("%s must be between 0 and 23", key)
	}
	return nil
}

type positiveField struct {
	key   string
	value int
}

// ensurePositive reports the first non-positive field in order.
func ensurePositive(fields []positiveField) error {
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive", f.key)
		}
	}
	return nil
}
