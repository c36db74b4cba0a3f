// internal/scrape/activation.go
package scrape

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// activate clicks el, attempting each mechanism in chain order until
// one succeeds. All "try native click, else synthetic event, else
// script invocation" sequences in the pipeline go through this one
// routine; the order itself is configuration data.
func activate(ctx context.Context, el Element, chain []Mechanism) error {
	if len(chain) == 0 {
		chain = DefaultActivation()
	}

	var lastErr error
	for _, mech := range chain {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := el.Click(ctx, mech)
		if err == nil {
			log.Debug().
				Str("selector", el.Selector()).
				Str("mechanism", string(mech)).
				Msg("Activation succeeded")
			return nil
		}
		lastErr = err
		log.Debug().
			Str("selector", el.Selector()).
			Str("mechanism", string(mech)).
			Err(err).
			Msg("Activation mechanism failed, falling through")
	}

	return fmt.Errorf("%w: %s: %v", ErrActivationFailed, el.Selector(), lastErr)
}
