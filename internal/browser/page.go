// internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/quote-harvest/termquote/internal/scrape"
)

// Session is one isolated tab context implementing scrape.Session.
type Session struct {
	ctx           context.Context
	cancel        context.CancelFunc
	actionTimeout time.Duration
	settleDelay   time.Duration
	closeOnce     sync.Once
}

// run executes chromedp actions on the tab, bounded by timeout. The
// caller's ctx is only consulted for early cancellation; chromedp
// actions must run on the tab's own context chain.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := s.ctx
	cancel := func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	}
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitStable waits for the body to be visible, then a short settle
// delay for late JS.
func (s *Session) WaitStable(ctx context.Context, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-time.After(s.settleDelay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	)
}

// Find locates the first actionable element matching selector, waiting
// up to timeout for it to appear. A miss is a result, not an error.
func (s *Session) Find(ctx context.Context, selector string, timeout time.Duration) (scrape.Element, bool) {
	var nodes []*cdp.Node
	err := s.run(ctx, timeout, chromedp.Nodes(selector, &nodes, chromedp.ByQuery))
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	el := &Element{sess: s, node: nodes[0], selector: selector}
	if !el.actionable(ctx) {
		return nil, false
	}
	return el, true
}

// HTML returns the serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, s.actionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close releases the tab. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// Element is a located DOM node bound to its session.
type Element struct {
	sess     *Session
	node     *cdp.Node
	selector string
}

// Selector reports the locator that produced this element.
func (e *Element) Selector() string { return e.selector }

// Find locates the first descendant matching selector within timeout.
func (e *Element) Find(ctx context.Context, selector string, timeout time.Duration) (scrape.Element, bool) {
	var nodes []*cdp.Node
	err := e.sess.run(ctx, timeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.FromNode(e.node)),
	)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	return &Element{sess: e.sess, node: nodes[0], selector: selector}, true
}

// FindAll returns all current descendants matching selector, without waiting.
func (e *Element) FindAll(ctx context.Context, selector string) ([]scrape.Element, error) {
	var nodes []*cdp.Node
	err := e.sess.run(ctx, e.sess.actionTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}
	els := make([]scrape.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{sess: e.sess, node: n, selector: selector})
	}
	return els, nil
}

// Click activates the element using the requested mechanism.
func (e *Element) Click(ctx context.Context, mech scrape.Mechanism) error {
	switch mech {
	case scrape.MechanismClick:
		return e.sess.run(ctx, e.sess.actionTimeout,
			chromedp.ActionFunc(func(ctx context.Context) error {
				var scrolled bool
				return chromedp.Evaluate(e.js(scrollJS), &scrolled).Do(ctx)
			}),
			chromedp.MouseClickNode(e.node),
		)
	case scrape.MechanismDispatch:
		return e.evalBool(ctx, dispatchClickJS)
	case scrape.MechanismScript:
		return e.evalBool(ctx, scriptClickJS)
	default:
		return fmt.Errorf("unknown activation mechanism %q", mech)
	}
}

// Fill replaces the element's value and fires input/change events so
// framework-bound forms notice the change.
func (e *Element) Fill(ctx context.Context, text string) error {
	js := fmt.Sprintf(fillJS, e.node.FullXPath(), text)
	var ok bool
	if err := e.sess.run(ctx, e.sess.actionTimeout, chromedp.Evaluate(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fill target %s detached", e.selector)
	}
	return nil
}

// Text returns the element's visible inner text.
func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.sess.run(ctx, e.sess.actionTimeout,
		chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID),
	)
	return text, err
}

// actionable checks the node is attached, visible and enabled.
func (e *Element) actionable(ctx context.Context) bool {
	var ok bool
	if err := e.sess.run(ctx, e.sess.actionTimeout, chromedp.Evaluate(e.js(actionableJS), &ok)); err != nil {
		return false
	}
	return ok
}

func (e *Element) evalBool(ctx context.Context, tmpl string) error {
	var ok bool
	if err := e.sess.run(ctx, e.sess.actionTimeout, chromedp.Evaluate(e.js(tmpl), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element %s detached", e.selector)
	}
	return nil
}

func (e *Element) js(tmpl string) string {
	return fmt.Sprintf(tmpl, e.node.FullXPath())
}

const (
	actionableJS = `(() => {
	const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el || el.disabled) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === "hidden" || style.display === "none") return false;
	return el.offsetParent !== null || style.position === "fixed";
})()`

	scrollJS = `(() => {
	const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) return false;
	el.scrollIntoView({block: "center", inline: "center"});
	return true;
})()`

	dispatchClickJS = `(() => {
	const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) return false;
	el.dispatchEvent(new MouseEvent("click", {bubbles: true, cancelable: true, view: window}));
	return true;
})()`

	scriptClickJS = `(() => {
	const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) return false;
	el.click();
	return true;
})()`

	fillJS = `(() => {
	const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) return false;
	el.focus();
	el.value = %q;
	el.dispatchEvent(new Event("input", {bubbles: true}));
	el.dispatchEvent(new Event("change", {bubbles: true}));
	return true;
})()`
)
