// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/internal/browser"
	"github.com/quote-harvest/termquote/internal/config"
	"github.com/quote-harvest/termquote/internal/ratelimit"
	"github.com/quote-harvest/termquote/internal/retry"
	"github.com/quote-harvest/termquote/internal/scrape"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Browser     *browser.Browser
	browserMu   sync.Mutex
	RateLimiter ratelimit.RateLimiter
	startTime   time.Time
}

// New creates and initializes a new Application.
//
// Logging is configured from the provided config, and the rate limiter
// is created immediately. The browser is started lazily via
// EnsureBrowser so that commands which never touch the network (help,
// validation errors) do not spawn a Chrome process.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()
	// Align the package-level logger so internals log through the same
	// writer and format.
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	limiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: limiter,
		startTime:   time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// EnsureBrowser lazily launches the shared Chrome process if it has not
// already been started.
func (a *Application) EnsureBrowser(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}

	a.browserMu.Lock()
	defer a.browserMu.Unlock()

	if a.Browser != nil {
		return nil
	}

	a.Logger.Debug().Msg("Launching browser on demand")
	b, err := browser.Launch(ctx, browser.Options{
		Headless:   a.Config.Headless,
		UserAgent:  a.Config.UserAgent,
		ChromePath: a.Config.ChromePath,
		Proxy:      a.Config.Proxy,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to launch browser")
		return err
	}

	a.Browser = b
	a.Logger.Info().Bool("headless", a.Config.Headless).Msg("Browser launched")
	return nil
}

// RetryPolicy builds the navigation retry policy from configuration.
func (a *Application) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.Config.RetryAttempts,
		Delay:       a.Config.RetryDelay,
		MaxDelay:    a.Config.RetryMaxDelay,
		Multiplier:  a.Config.RetryMultiplier,
	}
}

// MachineConfig builds the interaction machine configuration from the
// applicant profile and configured step timeouts.
func (a *Application) MachineConfig() scrape.MachineConfig {
	mc := scrape.DefaultMachineConfig(a.Config.Profile)
	mc.CascadeVariants = a.Config.CascadeVariants
	mc.StepTimeout = a.Config.StepTimeout
	mc.ProbeTimeout = a.Config.ProbeTimeout
	mc.SettleTimeout = a.Config.SettleTimeout
	return mc
}

// Close gracefully shuts down the application and its resources.
//
// Errors during shutdown are logged but do not prevent other shutdown
// steps from running.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	a.browserMu.Lock()
	defer a.browserMu.Unlock()

	if a.Browser != nil {
		if err := a.Browser.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
		a.Browser = nil
	}

	a.Logger.Debug().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Application shutdown complete")
	return nil
}
