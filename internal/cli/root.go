// Package cli provides the command-line interface for termquote.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/quote-harvest/termquote/internal/app"
	"github.com/quote-harvest/termquote/internal/config"
)

// application is shared by all commands; it is initialized in
// PersistentPreRunE and torn down in PersistentPostRun.
var application *app.Application

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "termquote",
	Short:   "Scrape term insurance plan quotes from the insurer site",
	Long: `Termquote drives a headless Chrome browser through the insurer's
quote journey: it fills the lead forms with a fixed applicant profile,
walks the premium calculator, and extracts plan, rider, and quote data
into structured JSON records.`,
	Version: "0.1.0",
}

// Execute runs the CLI. The provided context is cancelled on SIGINT or
// SIGTERM so in-flight scrapes can unwind cleanly.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize the application before running commands (skipped for
	// -h/--help, which never reaches PersistentPreRunE).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if application != nil {
			return nil
		}
		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		application = a
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if application == nil {
			return
		}
		_ = application.Close(cmd.Context())
		application = nil
	}
}
