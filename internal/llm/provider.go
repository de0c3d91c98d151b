package llm

import (
	"context"

	"github.com/Keats0206/fundtrack/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system+user exchange and returns the model text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single prompt for a provider
type CompletionRequest struct {
	System string
	Prompt string

	// Model overrides the configured model
	Model string

	MaxTokens   int
	Temperature float32

	// JSON asks the provider to return a single JSON object
	JSON bool
}

// CompletionResponse is the provider output
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL for custom or OpenAI-compatible endpoints
	BaseURL string

	Timeout int // seconds

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts the application config to provider config
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   llmCfg.Provider,
		Model:      llmCfg.Model,
		APIKey:     llmCfg.APIKey,
		BaseURL:    llmCfg.BaseURL,
		Timeout:    llmCfg.Timeout,
		MaxTokens:  llmCfg.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}

func (c Config) maxTokens(req int) int {
	if req > 0 {
		return req
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}

func (c Config) model(req, fallback string) string {
	if req != "" {
		return req
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
