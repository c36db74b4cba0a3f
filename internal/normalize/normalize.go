// Package normalize guarantees schema-complete records. It is pure:
// no I/O, no clock, no browser.
package normalize

import (
	"regexp"
	"strings"

	"github.com/quote-harvest/termquote/pkg/models"
)

var (
	planSuffixRe    = regexp.MustCompile(`(?i)-plan$`)
	marketingTermRe = regexp.MustCompile(`(?i)\b(buy|best|online|in india|202\d|axis max life insurance)\b`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// Normalize returns a copy of rec in which every schema field is
// present: extracted values are kept as-is, everything else gets the
// models.Unavailable sentinel. It also repairs the display name from
// the URL slug when extraction produced nothing better.
func Normalize(rec models.Record) models.Record {
	out := rec.Clone()

	if rawURL, ok := out[models.FieldSourceURL].(string); ok && rawURL != "" {
		name, hasName := out[models.FieldPlanName].(string)
		if !hasName || !strings.Contains(name, "Axis") {
			out[models.FieldPlanName] = PlanNameFromURL(rawURL)
		}
	}

	for _, field := range models.Schema {
		if _, ok := out[field]; !ok {
			out[field] = models.Unavailable
		}
	}
	return out
}

// PlanNameFromURL derives a display name from the trailing URL slug:
// delimiter replacement, title casing, marketing-term stripping, and
// the fixed insurer prefix/suffix template.
func PlanNameFromURL(rawURL string) string {
	slug := strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	slug = planSuffixRe.ReplaceAllString(slug, "")

	name := titleCase(strings.ReplaceAll(slug, "-", " "))
	name = marketingTermRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(spaceRe.ReplaceAllString(name, " "))

	return "Axis Max Life " + name + " Plan"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
