// Package scrape implements the resilient extraction pipeline: a
// bounded-concurrency pool of workers that drive an interaction state
// machine over a browser capability provider and always hand back a
// schema-complete record per input URL.
package scrape

import (
	"context"
	"time"
)

// Mechanism identifies one way of triggering a UI action. Mechanisms
// are tried in chain order until one succeeds.
type Mechanism string

const (
	// MechanismClick is a native pointer click issued by the browser engine.
	MechanismClick Mechanism = "click"
	// MechanismDispatch dispatches a synthetic bubbling click event on the node.
	MechanismDispatch Mechanism = "dispatch"
	// MechanismScript invokes the element's click handler from page script.
	MechanismScript Mechanism = "script"
)

// DefaultActivation is the standard activation fallback order.
func DefaultActivation() []Mechanism {
	return []Mechanism{MechanismClick, MechanismDispatch, MechanismScript}
}

// Finder is any scope a selector can be resolved against: a whole page
// or a sub-element.
type Finder interface {
	// Find returns the first actionable (attached, visible, enabled)
	// element matching selector within timeout. A miss is reported via
	// the bool, not an error.
	Find(ctx context.Context, selector string, timeout time.Duration) (Element, bool)
}

// Launcher hands out isolated browsing contexts from a shared browser
// process. The browser handle itself is shared read-only; every worker
// gets its own Session.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is one isolated browsing context, owned by a single worker
// for the lifetime of one item.
type Session interface {
	Finder

	// Navigate loads the URL, waiting up to timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitStable waits for the page to settle after navigation or a
	// submitted interaction.
	WaitStable(ctx context.Context, timeout time.Duration) error
	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)
	// Close releases the browsing context. Safe to call more than once.
	Close() error
}

// Element is a handle to a located DOM node.
type Element interface {
	Finder

	// Selector reports the locator that produced this element, for logging.
	Selector() string
	// FindAll returns all descendants matching selector, without waiting.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// Click activates the element using the given mechanism.
	Click(ctx context.Context, mech Mechanism) error
	// Fill replaces the element's value with text.
	Fill(ctx context.Context, text string) error
	// Text returns the element's visible inner text.
	Text(ctx context.Context) (string, error)
}
