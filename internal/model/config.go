package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all runtime configuration.
// Loaded by viper from defaults, config file, FUNDTRACK_* env vars and flags.
type Config struct {
	Database     DatabaseConfig    `yaml:"database" mapstructure:"database"`
	Search       SearchConfig      `yaml:"search" mapstructure:"search"`
	Profiles     ProfilesConfig    `yaml:"profiles" mapstructure:"profiles"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Scan         ScanConfig        `yaml:"scan" mapstructure:"scan"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Lexicon      LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
	Metrics      MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// DatabaseConfig points at the Postgres alert store. Empty URL means in-memory.
type DatabaseConfig struct {
	URL            string `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	MigrateOnStart bool   `yaml:"migrate_on_start" mapstructure:"migrate_on_start"`
}

// SearchConfig configures the Perplexity news/search source
type SearchConfig struct {
	APIKey           string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	MaxResults       int           `yaml:"max_results" mapstructure:"max_results" validate:"min=1,max=50"`
	MaxTokensPerPage int           `yaml:"max_tokens_per_page" mapstructure:"max_tokens_per_page" validate:"min=0"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	DomainFilter     []string      `yaml:"domain_filter" mapstructure:"domain_filter"`
	CacheTTL         time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"min=0"`
}

// ProfilesConfig configures the RapidAPI professional-network source
type ProfilesConfig struct {
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Host     string        `yaml:"host" mapstructure:"host" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"min=0"`
}

// LLMConfig configures the optional analyst. Empty provider disables it.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic claude gemini"`
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout" validate:"min=0"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"min=0"`
}

// ScanConfig controls the portfolio scan loop
type ScanConfig struct {
	CompanyDelay     time.Duration `yaml:"company_delay" mapstructure:"company_delay" validate:"min=0"`
	DedupWindow      time.Duration `yaml:"dedup_window" mapstructure:"dedup_window" validate:"gt=0"`
	RecentAlertLimit int           `yaml:"recent_alert_limit" mapstructure:"recent_alert_limit" validate:"min=1"`
	InsightTTL       time.Duration `yaml:"insight_ttl" mapstructure:"insight_ttl" validate:"gt=0"`
	GenerateInsights bool          `yaml:"generate_insights" mapstructure:"generate_insights"`
	BackfillSnippets bool          `yaml:"backfill_snippets" mapstructure:"backfill_snippets"`
	Interval         time.Duration `yaml:"interval" mapstructure:"interval" validate:"min=0"`
}

// CacheConfig controls response caching for the external sources
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl" validate:"min=0"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl" validate:"min=0"`
}

// HTTPConfig is shared by every outbound HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"min=1"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	Insecure     bool          `yaml:"insecure,omitempty" mapstructure:"insecure"`
}

// RateLimitConfig is the per-domain limit applied to page fetches
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"min=1"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=1"`
}

// LexiconConfig optionally overrides the built-in keyword lexicon
type LexiconConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`
}

// MetricsConfig configures the Prometheus endpoint served by watch
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL:          "https://api.perplexity.ai",
			MaxResults:       10,
			MaxTokensPerPage: 512,
			Timeout:          30 * time.Second,
			CacheTTL:         15 * time.Minute,
		},
		Profiles: ProfilesConfig{
			BaseURL:  "https://linkedin-data-api.p.rapidapi.com",
			Host:     "linkedin-data-api.p.rapidapi.com",
			Timeout:  30 * time.Second,
			CacheTTL: time.Hour,
		},
		LLM: LLMConfig{
			Timeout:   60,
			MaxTokens: 2000,
		},
		Scan: ScanConfig{
			CompanyDelay:     5 * time.Second,
			DedupWindow:      7 * 24 * time.Hour,
			RecentAlertLimit: 10,
			InsightTTL:       24 * time.Hour,
			GenerateInsights: true,
			Interval:         6 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:      20 * time.Second,
			UserAgent:    "fundtrack/0.1 (+https://github.com/Keats0206/fundtrack)",
			MaxBodyBytes: 2_000_000,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".fundtrack-cache"
	}
	return filepath.Join(dir, "fundtrack")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and returns a readable error listing every violation
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
