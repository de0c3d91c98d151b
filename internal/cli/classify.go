package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Keats0206/fundtrack/internal/classify"
)

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <text...>",
	Short: "Classify text by sentiment and topic",
	Long: `Classify applies the keyword rules used for news alerts to arbitrary text.

Example:
  fundtrack classify "Acme raises $20M to accelerate growth"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		lex, err := loadLexicon(cfg)
		if err != nil {
			return err
		}

		result := classify.NewClassifier(lex).Classify(strings.Join(args, " "))
		if classifyJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Sentiment: %s\nTopic:     %s\n", result.Sentiment, result.Topic)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the classification as JSON")
}
