package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Keats0206/fundtrack/internal/logger"
	"github.com/Keats0206/fundtrack/internal/model"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "dev"

var (
	cfgFile       string
	verbose       bool
	portfolioFile string

	// settings holds the layered settings, rebuilt by initConfig on every execution
	settings = viper.New()

	// configErr holds a config file read failure from initConfig
	configErr error
)

// annotationConfig marks commands that run without a readable config file
const annotationConfig = "fundtrack/config"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fundtrack",
	Short: "fundtrack - portfolio news alerts and stealth founder signals",
	Long: `fundtrack watches a VC portfolio for news and talent signals.

It classifies company news into sentiment and topic, stores new alerts
without repeating titles seen in the last week, synthesizes short-lived
insights per company, and scores professional profiles for signs that
someone has left to build something in stealth.

Scores and classifications are keyword heuristics, not predictions.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil && cmd.Annotations[annotationConfig] != "optional" {
			return configErr
		}
		level := settings.GetString("log.level")
		if verbose {
			level = "debug"
		}
		logger.Init(level, settings.GetString("log.format"))
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fundtrack %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.fundtrack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&portfolioFile, "portfolio", "", "portfolio YAML used to seed the store")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres URL (empty uses an in-memory store)")

	rootCmd.AddCommand(versionCmd)
}

// envAliases are the conventional variable names accepted next to FUNDTRACK_*
var envAliases = map[string]string{
	"database.url":     "DATABASE_URL",
	"search.api_key":   "PERPLEXITY_API_KEY",
	"profiles.api_key": "RAPIDAPI_KEY",
}

var optionalKeys = []string{
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"http.http_proxy",
	"http.https_proxy",
	"http.no_proxy",
	"http.insecure",
	"lexicon.path",
	"metrics.addr",
}

// initConfig layers defaults, the config file and environment variables in viper
func initConfig() {
	settings = viper.New()
	configErr = nil

	_ = settings.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = settings.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = settings.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// Defaults go in first so every key is known to AutomaticEnv
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		configErr = fmt.Errorf("encode default config: %w", err)
		return
	}
	settings.SetConfigType("yaml")
	if err := settings.MergeConfig(bytes.NewReader(defaults)); err != nil {
		configErr = fmt.Errorf("load default config: %w", err)
		return
	}

	if cfgFile != "" {
		settings.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		settings.AddConfigPath(filepath.Join(home, ".fundtrack"))
		settings.SetConfigName("config")
	}

	settings.SetEnvPrefix("FUNDTRACK")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()

	for key, alias := range envAliases {
		envKey := "FUNDTRACK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = settings.BindEnv(key, envKey, alias)
	}
	// Keys omitted from the default YAML still need an env binding
	for _, key := range optionalKeys {
		_ = settings.BindEnv(key)
	}

	if err := settings.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config file: %w", err)
		}
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", settings.ConfigFileUsed())
	}
}

// loadConfig decodes the layered viper settings and validates them
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := settings.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Provider specific API keys from the environment
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
