// internal/scrape/worker.go
package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/internal/normalize"
	"github.com/quote-harvest/termquote/internal/ratelimit"
	"github.com/quote-harvest/termquote/internal/retry"
	"github.com/quote-harvest/termquote/pkg/models"
)

// WorkerConfig tunes one extraction worker. Retry wraps navigation and
// the post-navigation settle only; the interaction machine is never
// retried because its submits are not idempotent.
type WorkerConfig struct {
	NavTimeout    time.Duration
	StableTimeout time.Duration
	Retry         retry.Policy
	Insurer       string
	PlanType      string
	// Now supplies the scrape date; tests pin it.
	Now func() time.Time
	// OnHTML, when set, receives the landing page HTML after a
	// successful navigation (used for page snapshots).
	OnHTML func(url, html string)
}

// Worker extracts one plan record end-to-end: isolated session,
// navigation under retry, interaction machine, keyword flags,
// normalization. Process always returns a schema-complete record and
// never lets a fault escape.
type Worker struct {
	launcher Launcher
	limiter  ratelimit.RateLimiter
	machine  *Machine
	cfg      WorkerConfig
}

// NewWorker wires a worker. limiter may be nil to disable throttling.
func NewWorker(launcher Launcher, limiter ratelimit.RateLimiter, machine *Machine, cfg WorkerConfig) *Worker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 60 * time.Second
	}
	if cfg.StableTimeout <= 0 {
		cfg.StableTimeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	return &Worker{
		launcher: launcher,
		limiter:  limiter,
		machine:  machine,
		cfg:      cfg,
	}
}

// Seed builds the minimally populated record for url: the identity
// fields are set before any browser interaction so even a total
// failure yields a meaningful, schema-completable record.
func (w *Worker) Seed(url string) models.Record {
	return models.Record{
		models.FieldSourceURL:        url,
		models.FieldSourceScrapeDate: w.cfg.Now().Format("2006-01-02"),
		models.FieldInsurer:          w.cfg.Insurer,
		models.FieldPlanName:         normalize.PlanNameFromURL(url),
		models.FieldPlanType:         w.cfg.PlanType,
	}
}

// Process scrapes one plan page and returns its normalized record.
func (w *Worker) Process(ctx context.Context, url string) (rec models.Record) {
	lg := log.With().Str("url", url).Logger()
	seed := w.Seed(url)
	rec = normalize.Normalize(seed)

	defer func() {
		if r := recover(); r != nil {
			lg.Error().Interface("panic", r).Msg("Worker panicked, returning partial record")
			rec = normalize.Normalize(seed)
		}
	}()

	session, err := w.launcher.NewSession(ctx)
	if err != nil {
		lg.Error().Err(err).Msg("Failed to open browsing context")
		return rec
	}
	defer session.Close()

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx, url); err != nil {
			lg.Warn().Err(err).Msg("Rate limiter wait aborted")
			return rec
		}
	}

	lg.Info().Msg("Navigating to plan")
	err = retry.Do(ctx, w.cfg.Retry, func() error {
		if err := session.Navigate(ctx, url, w.cfg.NavTimeout); err != nil {
			return err
		}
		return session.WaitStable(ctx, w.cfg.StableTimeout)
	})
	if err != nil {
		lg.Error().Err(newStepError("navigation", KindTransient, err)).Msg("Navigation failed, returning identity-only record")
		return rec
	}

	if w.cfg.OnHTML != nil {
		if html, err := session.HTML(ctx); err == nil {
			w.cfg.OnHTML(url, html)
		}
	}

	terminal := w.machine.Run(ctx, session, seed)
	lg.Info().Str("terminal_state", string(terminal)).Msg("Quote journey finished")

	if html, err := session.HTML(ctx); err == nil {
		medical, smoker := keywordFlags(html)
		seed[models.FieldMedicalRequired] = medical
		seed[models.FieldSmokerPremiumDiff] = smoker
	} else {
		lg.Warn().Err(err).Msg("Could not read page text for keyword flags")
	}

	rec = normalize.Normalize(seed)
	lg.Info().Str("plan", rec[models.FieldPlanName].(string)).Msg("Plan scraped")
	return rec
}

// keywordFlags derives the medical/smoker booleans from the page's
// informational text (list items, paragraphs, table cells, spans).
func keywordFlags(html string) (medical, smoker bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, false
	}
	var sb strings.Builder
	doc.Find("li, p, td, span").Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
		sb.WriteByte(' ')
	})
	joined := strings.ToLower(sb.String())
	return strings.Contains(joined, "medical"), strings.Contains(joined, "smoker")
}
