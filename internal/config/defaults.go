package config

const (
	defaultConfigPath        = "~/.config/sonalyze/config.toml"
	defaultDataDir           = "~/.local/share/sonalyze/data"
	defaultClientsDir        = "~/.local/share/sonalyze/clients"
	defaultExportsDir        = "~/.local/share/sonalyze/exports"
	defaultLogDir            = "~/.local/share/sonalyze/logs"
	defaultDayStartHour      = 7
	defaultNightStartHour    = 22
	defaultTopN              = 5
	defaultMinConsecutive    = 3
	defaultSegmentSeconds    = 9
	defaultMaxEvents         = 50
	defaultRoom              = "salon"
	defaultLLMBaseURL        = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel          = "llama-3.3-70b-versatile"
	defaultLLMTitle          = "Sonalyze"
	defaultLLMTimeoutSeconds = 60
	defaultLLMTemperature    = 0.3
	defaultLLMMaxTokens      = 2000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ClientsDir: defaultClientsDir,
			ExportsDir: defaultExportsDir,
			LogDir:     defaultLogDir,
		},
		Analysis: Analysis{
			DayStartHour:             defaultDayStartHour,
			NightStartHour:           defaultNightStartHour,
			TopN:                     defaultTopN,
			MinConsecutiveDetections: defaultMinConsecutive,
			SegmentSeconds:           defaultSegmentSeconds,
			MaxEvents:                defaultMaxEvents,
			Room:                     defaultRoom,
		},
		LLM: LLM{
			Enabled:        true,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			Temperature:    defaultLLMTemperature,
			MaxTokens:      defaultLLMMaxTokens,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
