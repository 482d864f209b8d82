package model

// ================ Config ================

// ClassifierModelConfig configures the single-label intent classification model.
type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"16"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.0"`
}

// ResponseModelConfig configures the tool-enabled conversational model.
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

// AgentConfig names the default agent entry registered at startup.
type AgentConfig struct {
	Provider string `envconfig:"AGENT_PROVIDER" default:"google"`
	ModelKey string `envconfig:"AGENT_MODEL_KEY" default:"gemini-2.5-flash"`
	Tools    struct {
		MaxCalls int `envconfig:"AGENT_TOOL_MAX_CALLS" default:"10"`
	}
}

// ForexConfig configures the external rate source and its cache.
type ForexConfig struct {
	BaseURL  string `envconfig:"FOREX_BASE_API_URL" required:"true"`
	CacheTTL string `envconfig:"FOREX_CACHE_TTL" default:"10m"`
}

// DatabaseConfig configures the relational store.
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" required:"true"`
}
