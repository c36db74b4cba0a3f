// internal/scrape/errors.go
package scrape

import (
	"errors"
	"fmt"
)

// Common pipeline errors
var (
	ErrActivationFailed  = errors.New("activation mechanisms exhausted")
	ErrVariantsExhausted = errors.New("no form variant could be handled")
)

// FailureKind classifies a step failure. NotFound is intentionally not
// here: a missed selector chain is a first-class result, not an error.
type FailureKind string

const (
	KindTransient  FailureKind = "TRANSIENT"  // navigation/network/timeout, retried per policy
	KindActivation FailureKind = "ACTIVATION" // an action's mechanism chain exhausted
	KindAbandoned  FailureKind = "ABANDONED"  // a state's required element or action failed
)

// StepError wraps a failure with the state it occurred in. It is
// handled at the lowest level with a defined fallback and only ever
// surfaces as a partial record, never as a crash.
type StepError struct {
	State      string
	Kind       FailureKind
	Underlying error
}

func (e *StepError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: state %s: %v", e.Kind, e.State, e.Underlying)
	}
	return fmt.Sprintf("%s: state %s", e.Kind, e.State)
}

func (e *StepError) Unwrap() error {
	return e.Underlying
}

func newStepError(state string, kind FailureKind, err error) *StepError {
	return &StepError{State: state, Kind: kind, Underlying: err}
}
