// internal/cli/plan.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quote-harvest/termquote/internal/discover"
	"github.com/quote-harvest/termquote/internal/output"
	"github.com/quote-harvest/termquote/internal/scrape"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <url>",
	Short: "Scrape a single plan page and print its record as JSON",
	Example: `  # Inspect one plan without writing a file
  termquote plan https://www.axismaxlife.com/term-insurance-plans/smart-secure-plus-plan`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := application
	cfg := a.Config

	url := args[0]
	if err := discover.ValidateURL(url); err != nil {
		return err
	}

	if err := a.EnsureBrowser(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	machine := scrape.NewMachine(a.MachineConfig())
	worker := scrape.NewWorker(a.Browser, a.RateLimiter, machine, scrape.WorkerConfig{
		NavTimeout:    cfg.NavTimeout,
		StableTimeout: cfg.StableTimeout,
		Retry:         a.RetryPolicy(),
		Insurer:       cfg.Insurer,
		PlanType:      cfg.PlanType,
	})

	rec := worker.Process(ctx, url)
	data, err := output.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
