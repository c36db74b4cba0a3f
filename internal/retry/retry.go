// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy defines retry behavior with exponential backoff.
// Each operation carries its own Policy; there is no global one.
type Policy struct {
	MaxAttempts int           // Total number of attempts (not additional retries)
	Delay       time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Upper bound for the backoff delay
	Multiplier  float64       // Backoff multiplier applied per attempt
}

// DefaultPolicy returns a sensible default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do treats it as terminal and stops retrying.
// Use it for malformed input and other failures where repeating the
// operation cannot help.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do executes fn with retries per the given policy.
//
// fn must be idempotent: navigation and read-only waits qualify, form
// submissions do not and must never be wrapped. Transient failures
// (timeouts, temporary network conditions) are retried with backoff;
// terminal failures are returned immediately. The final failure is
// always surfaced to the caller, never swallowed.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		if !Transient(err) {
			log.Debug().
				Err(err).
				Msg("Error is terminal, not retrying")
			return err
		}

		// Don't sleep after the last attempt
		if attempt < p.MaxAttempts-1 {
			backoff := backoffDelay(attempt, p)

			log.Debug().
				Int("attempt", attempt+1).
				Int("max_attempts", p.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Warn().
		Int("attempts", p.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", p.MaxAttempts, lastErr)
}

// backoffDelay calculates the delay before the next attempt.
func backoffDelay(attempt int, p Policy) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	backoff := float64(p.Delay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 && backoff > float64(p.MaxDelay) {
		backoff = float64(p.MaxDelay)
	}
	return time.Duration(backoff)
}

// Transient reports whether an error is worth retrying.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	// Deadline and timeout conditions are always transient.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return true
	}

	var tempErr interface{ Temporary() bool }
	if errors.As(err, &tempErr) {
		return tempErr.Temporary()
	}

	// Default: retry
	return true
}
