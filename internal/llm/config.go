package llm

import "fmt"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskNarrative TaskType = "narrative"
)

// Provider selects the wire protocol of the generation endpoint.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default; reports then carry the placeholder narrative.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Provider:   ProviderOllama,
		Endpoint:   "",
		Model:      "llama3.2",
		TimeoutMs:  90000,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			TaskNarrative: {Temperature: 0.7, MaxTokens: 4096},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// EffectiveEndpoint returns the configured endpoint or the provider default.
func (c LLMConfig) EffectiveEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Provider == ProviderGemini {
		return defaultGeminiEndpoint
	}
	return defaultOllamaEndpoint
}

// Validate reports configuration that cannot work once enabled.
func (c LLMConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case ProviderOllama:
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm provider %q requires an api key", c.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	return nil
}

// NewClient builds the client for the configured provider.
func NewClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(cfg, observer), nil
	default:
		return NewOllamaClient(cfg, observer), nil
	}
}
