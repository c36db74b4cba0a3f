package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validate checks the configuration for invalid values
func validate(c *Config) error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL %q is not a valid absolute URL", c.BaseURL)
	}
	if !strings.HasPrefix(c.PathPrefix, "/") {
		return fmt.Errorf("path prefix %q must start with /", c.PathPrefix)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Concurrency > DefaultMaxConcurrency {
		return fmt.Errorf("concurrency must not exceed %d, got %d", DefaultMaxConcurrency, c.Concurrency)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}

	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive, got %s", c.NavTimeout)
	}
	if c.StableTimeout <= 0 {
		return fmt.Errorf("stable timeout must be positive, got %s", c.StableTimeout)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("step timeout must be positive, got %s", c.StepTimeout)
	}

	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1, got %.2f", c.RetryMultiplier)
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be positive, got %.2f", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1, got %d", c.RateLimitBurst)
	}

	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}
