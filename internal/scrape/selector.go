// internal/scrape/selector.go
package scrape

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SelectorChain is an ordered sequence of locators for one logical
// field or action. Order encodes preference: the most specific, most
// reliable selector comes first. An exhausted chain is a defined
// "not found" outcome, not an error.
type SelectorChain []string

// Resolve tries each candidate in chain against scope until one yields
// an actionable element. Returns the first match, or ok=false when the
// chain is exhausted. Pure lookup, no side effects; used both for
// extraction reads and for locating click/fill targets.
func Resolve(ctx context.Context, scope Finder, chain SelectorChain, timeout time.Duration) (Element, bool) {
	for _, sel := range chain {
		if ctx.Err() != nil {
			return nil, false
		}
		el, ok := scope.Find(ctx, sel, timeout)
		if ok {
			return el, true
		}
		log.Debug().Str("selector", sel).Msg("Selector candidate missed, falling through")
	}
	return nil, false
}
