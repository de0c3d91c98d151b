package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Keats0206/fundtrack/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fundtrack configuration",
	Long: `Manage fundtrack configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FUNDTRACK_*, PERPLEXITY_API_KEY, RAPIDAPI_KEY, DATABASE_URL)
3. Config file (~/.fundtrack/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags. API keys are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := settings.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		masked := *cfg
		masked.Search.APIKey = maskSecret(cfg.Search.APIKey)
		masked.Profiles.APIKey = maskSecret(cfg.Profiles.APIKey)
		masked.LLM.APIKey = maskSecret(cfg.LLM.APIKey)
		masked.Database.URL = maskSecret(cfg.Database.URL)

		yamlData, err := yaml.Marshal(&masked)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")

		return nil
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the built-in defaults to ~/.fundtrack/config.yaml, or to the path
given with --config. An existing file is kept unless --force is set.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationConfig: "optional"},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := cfgFile
		if configPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			configPath = filepath.Join(home, ".fundtrack", "config.yaml")
		}

		flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
		if configInitForce {
			flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		f, err := os.OpenFile(configPath, flags, 0o600)
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if _, err = fmt.Fprintf(f, "%s\n%s\n%s", configHeader, yamlData, configFooter); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default configuration: %s\n", configPath)
		return nil
	},
}

const configHeader = `# fundtrack configuration
#
# Precedence, highest first: flags, FUNDTRACK_* environment variables,
# this file, built-in defaults.
#
# Durations use Go syntax (90s, 15m, 6h, 168h).
`

const configFooter = `# Keep secrets out of this file where possible:
#   PERPLEXITY_API_KEY  news and intelligence search
#   RAPIDAPI_KEY        professional profile search
#   DATABASE_URL        Postgres; leave unset for an in-memory store
#   OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY for llm.provider
`

// maskSecret keeps the first four characters of a non-empty secret
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
}
