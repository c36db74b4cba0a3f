package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/quote-harvest/termquote/pkg/models"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Target site
	BaseURL       string
	ListingPath   string
	PathPrefix    string
	ExcludedTerms []string
	Limit         int

	// Browser
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string

	// Pipeline
	Concurrency     int
	NavTimeout      time.Duration
	StableTimeout   time.Duration
	StepTimeout     time.Duration
	ProbeTimeout    time.Duration
	SettleTimeout   time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	RetryMaxDelay   time.Duration
	RetryMultiplier float64
	CascadeVariants bool

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Output
	OutputPath  string
	SnapshotDir string

	// Record identity
	Insurer  string
	PlanType string

	// Form answers
	Profile models.Profile
}

// Load builds a Config by combining defaults, environment variables,
// and CLI flags. Caller should pass the root *cobra.Command so flags
// can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		BaseURL:         DefaultBaseURL,
		ListingPath:     DefaultListingPath,
		PathPrefix:      DefaultPathPrefix,
		ExcludedTerms:   DefaultExcludedTerms(),
		Headless:        DefaultHeadless,
		UserAgent:       DefaultUserAgent,
		Concurrency:     DefaultConcurrency,
		NavTimeout:      DefaultNavTimeout,
		StableTimeout:   DefaultStableTimeout,
		StepTimeout:     DefaultStepTimeout,
		ProbeTimeout:    DefaultProbeTimeout,
		SettleTimeout:   DefaultSettleTimeout,
		RetryAttempts:   DefaultRetryAttempts,
		RetryDelay:      DefaultRetryDelay,
		RetryMaxDelay:   DefaultRetryMaxDelay,
		RetryMultiplier: DefaultRetryMultiplier,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		OutputPath:      DefaultOutput,
		Insurer:         DefaultInsurer,
		PlanType:        DefaultPlanType,
		Profile:         DefaultProfile(),
	}

	// Environment overrides
	if v := os.Getenv("TERMQUOTE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TERMQUOTE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("TERMQUOTE_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TERMQUOTE_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}

	// CLI flag overrides
	if cmd != nil {
		flags := cmd.Flags()
		if f := flags.Lookup("base-url"); f != nil && f.Changed {
			cfg.BaseURL = f.Value.String()
		}
		if f := flags.Lookup("user-agent"); f != nil && f.Changed {
			cfg.UserAgent = f.Value.String()
		}
		if f := flags.Lookup("proxy"); f != nil && f.Changed {
			cfg.Proxy = f.Value.String()
		}
		if f := flags.Lookup("chrome-path"); f != nil && f.Changed {
			cfg.ChromePath = f.Value.String()
		}
		if f := flags.Lookup("timeout"); f != nil && f.Changed {
			if d, err := time.ParseDuration(f.Value.String()); err == nil {
				cfg.NavTimeout = d
			}
		}
		if f := flags.Lookup("concurrency"); f != nil && f.Changed {
			if n, err := strconv.Atoi(f.Value.String()); err == nil {
				cfg.Concurrency = n
			}
		}
		if f := flags.Lookup("retries"); f != nil && f.Changed {
			if n, err := strconv.Atoi(f.Value.String()); err == nil {
				cfg.RetryAttempts = n
			}
		}
		if f := flags.Lookup("limit"); f != nil && f.Changed {
			if n, err := strconv.Atoi(f.Value.String()); err == nil {
				cfg.Limit = n
			}
		}
		if f := flags.Lookup("output"); f != nil && f.Changed {
			cfg.OutputPath = f.Value.String()
		}
		if f := flags.Lookup("snapshot-dir"); f != nil && f.Changed {
			cfg.SnapshotDir = f.Value.String()
		}
		if f := flags.Lookup("headed"); f != nil && f.Value.String() == "true" {
			cfg.Headless = false
		}
		if f := flags.Lookup("cascade-variants"); f != nil && f.Value.String() == "true" {
			cfg.CascadeVariants = true
		}
		if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
		if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
