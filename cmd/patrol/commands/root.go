package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valksor/go-patrol/internal/config"
	"github.com/valksor/go-patrol/internal/log"
)

var (
	cfg *config.Config

	// Global flags.
	verbose    bool
	jsonLogs   bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "patrol",
	Short: "Revert workflow engine for MediaWiki sites",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Long: `Patrol reverts damaging edits on MediaWiki sites.

It runs the revert as a non-blocking workflow: conflicting newer edits
are detected before anything is written, privileged rollback is used
when the session has the right, and a manual content-restoring revert
is used otherwise.

Quick Start:
  patrol revert --page "Some page" --user BadUser --revid 12345
  patrol config
  patrol version`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env first so credentials are visible to config loading
		if err := config.LoadDotEnvFromCwd(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .patrol/.env: %v\n", err)
		}

		log.Configure(log.Options{
			Verbose: verbose,
			JSON:    jsonLogs,
		})

		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log.Debug("initialized", "site", cfg.Site.Name, "verbose", verbose)
		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
