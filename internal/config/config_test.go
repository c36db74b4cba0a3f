package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency, got %d", cfg.Concurrency)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
	if cfg.Profile.FirstName == "" {
		t.Error("expected a populated applicant profile")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TERMQUOTE_BASE_URL", "https://staging.example.com")
	t.Setenv("TERMQUOTE_PROXY", "http://localhost:8080")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://staging.example.com" {
		t.Errorf("env base URL not applied: %s", cfg.BaseURL)
	}
	if cfg.Proxy != "http://localhost:8080" {
		t.Errorf("env proxy not applied: %s", cfg.Proxy)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(nil)
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"relative base URL", func(c *Config) { c.BaseURL = "axismaxlife.com" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"excess concurrency", func(c *Config) { c.Concurrency = DefaultMaxConcurrency + 1 }},
		{"negative limit", func(c *Config) { c.Limit = -1 }},
		{"zero nav timeout", func(c *Config) { c.NavTimeout = 0 }},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimitRPS = 0 }},
		{"empty output", func(c *Config) { c.OutputPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
