// internal/cli/run.go
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/quote-harvest/termquote/internal/discover"
	"github.com/quote-harvest/termquote/internal/output"
	"github.com/quote-harvest/termquote/internal/scrape"
	"github.com/quote-harvest/termquote/pkg/models"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Scrape plan quotes and write them to a JSON file",
	Long: `Discovers plan pages on the insurer's listing page and scrapes each
one through the full quote journey. Pass explicit plan URLs to skip
discovery and scrape only those pages.`,
	Example: `  # Discover and scrape every listed plan
  termquote run

  # Scrape two specific plans with higher parallelism
  termquote run -c 5 https://www.axismaxlife.com/term-insurance-plans/smart-secure-plus-plan

  # First three plans only, with page snapshots
  termquote run --limit 3 --snapshot-dir ./pages -o plans.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := application
	cfg := a.Config

	if err := a.EnsureBrowser(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	urls, err := collectURLs(cmd, args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no plan pages found at %s%s", cfg.BaseURL, cfg.ListingPath)
	}
	log.Info().Int("plans", len(urls)).Msg("Starting scrape")

	machine := scrape.NewMachine(a.MachineConfig())
	wcfg := scrape.WorkerConfig{
		NavTimeout:    cfg.NavTimeout,
		StableTimeout: cfg.StableTimeout,
		Retry:         a.RetryPolicy(),
		Insurer:       cfg.Insurer,
		PlanType:      cfg.PlanType,
	}
	if cfg.SnapshotDir != "" {
		wcfg.OnHTML = func(pageURL, html string) {
			if err := output.SaveSnapshot(pageURL, html, cfg.SnapshotDir); err != nil {
				log.Warn().Err(err).Str("url", pageURL).Msg("Failed to write page snapshot")
			}
		}
	}
	worker := scrape.NewWorker(a.Browser, a.RateLimiter, machine, wcfg)

	pool := scrape.NewPool(worker, cfg.Concurrency)
	if cfg.LogLevel != "error" && !cfg.JSONLog {
		bar := progressbar.Default(int64(len(urls)), "scraping plans")
		pool.OnResult(func(models.Result) {
			_ = bar.Add(1)
		})
	}

	records := pool.RunAll(ctx, urls)

	if err := output.SaveJSON(records, cfg.OutputPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().
		Int("records", len(records)).
		Str("output", cfg.OutputPath).
		Msg("Scrape complete")
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d plan records to %s\n", len(records), cfg.OutputPath)
	return nil
}

// collectURLs resolves the set of plan pages to scrape: explicit
// arguments when given, otherwise a discovery pass over the listing
// page.
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	a := application
	cfg := a.Config

	if len(args) > 0 {
		for _, u := range args {
			if err := discover.ValidateURL(u); err != nil {
				return nil, err
			}
		}
		if cfg.Limit > 0 && len(args) > cfg.Limit {
			args = args[:cfg.Limit]
		}
		return args, nil
	}

	session, err := a.Browser.NewSession(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery session: %w", err)
	}
	defer session.Close()

	return discover.Plans(cmd.Context(), session, discover.Config{
		BaseURL:     cfg.BaseURL,
		ListingPath: cfg.ListingPath,
		PathPrefix:  cfg.PathPrefix,
		Excluded:    cfg.ExcludedTerms,
		Limit:       cfg.Limit,
		NavTimeout:  cfg.NavTimeout,
		Stable:      cfg.StableTimeout,
		Retry:       a.RetryPolicy(),
	})
}
