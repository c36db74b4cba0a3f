package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("base-url", DefaultBaseURL, "Origin of the insurer site")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome/Chromium executable (auto-detected by default)")
	cmd.PersistentFlags().String("timeout", DefaultNavTimeout.String(), "Navigation timeout per attempt")
	cmd.PersistentFlags().IntP("concurrency", "c", DefaultConcurrency, "Maximum plans scraped in parallel")
	cmd.PersistentFlags().Int("retries", DefaultRetryAttempts, "Navigation retry attempts")
	cmd.PersistentFlags().Int("limit", 0, "Scrape at most N plans (0 = all)")
	cmd.PersistentFlags().StringP("output", "o", DefaultOutput, "Output JSON file path")
	cmd.PersistentFlags().String("snapshot-dir", "", "Write per-plan markdown page snapshots to this directory")
	cmd.PersistentFlags().Bool("headed", false, "Run the browser with a visible window")
	cmd.PersistentFlags().Bool("cascade-variants", false, "Attempt every form variant even after one succeeds")
}
