package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Prints the configuration after merging config files and
environment overrides. Tokens are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		shown.Site.RollbackToken = redact(shown.Site.RollbackToken)
		shown.Site.EditToken = redact(shown.Site.EditToken)
		shown.Site.OAuthToken = redact(shown.Site.OAuthToken)

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func redact(token string) string {
	if token == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}

func init() {
	rootCmd.AddCommand(configCmd)
}
