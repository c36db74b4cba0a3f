// Package discover collects the plan page URLs to scrape from the
// insurer's listing page: anchors matching the plan path prefix,
// minus the excluded marketing/info pages.
package discover

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/internal/retry"
	"github.com/quote-harvest/termquote/internal/scrape"
)

// Config drives one discovery pass.
type Config struct {
	BaseURL     string // origin, e.g. https://www.axismaxlife.com
	ListingPath string // e.g. /term-insurance-plans
	PathPrefix  string // href prefix a plan link must carry
	Excluded    []string
	Limit       int // 0 = no limit
	NavTimeout  time.Duration
	Stable      time.Duration
	Retry       retry.Policy
}

// Plans navigates the listing page and returns the deduplicated,
// sorted set of plan URLs. The navigation runs under the retry policy;
// a listing that never loads is an error (there is nothing to scrape).
func Plans(ctx context.Context, s scrape.Session, cfg Config) ([]string, error) {
	listing := cfg.BaseURL + cfg.ListingPath
	log.Info().Str("url", listing).Msg("Collecting plan URLs")

	err := retry.Do(ctx, cfg.Retry, func() error {
		if err := s.Navigate(ctx, listing, cfg.NavTimeout); err != nil {
			return err
		}
		return s.WaitStable(ctx, cfg.Stable)
	})
	if err != nil {
		return nil, fmt.Errorf("listing page did not load: %w", err)
	}

	html, err := s.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read listing page: %w", err)
	}

	urls, err := FilterPlanLinks(html, cfg)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(urls)).Msg("Plan URLs collected")
	return urls, nil
}

// FilterPlanLinks extracts plan URLs from listing HTML. Split out so
// the filtering rules are testable without a browser.
func FilterPlanLinks(html string, cfg Config) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing HTML: %w", err)
	}

	seen := make(map[string]struct{})
	doc.Find(`a[href*='-plan']`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, cfg.PathPrefix) {
			return
		}
		if excluded(href, cfg.Excluded) {
			return
		}
		clean := cfg.BaseURL + strings.SplitN(href, "?", 2)[0]
		seen[clean] = struct{}{}
	})

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	if cfg.Limit > 0 && len(urls) > cfg.Limit {
		urls = urls[:cfg.Limit]
	}
	return urls, nil
}

// ValidateURL checks a caller-supplied plan URL is a usable address.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

func excluded(href string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(href, term) {
			return true
		}
	}
	return false
}
