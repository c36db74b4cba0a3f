package scrape

import (
	"context"
	"sync"
	"time"
)

// fakeElement is an in-memory Element for pipeline tests.
type fakeElement struct {
	sel      string
	text     string
	fillErr  error
	clickErr map[Mechanism]error

	finds    map[string]*fakeElement
	children map[string][]*fakeElement

	mu     sync.Mutex
	clicks []Mechanism
	fills  []string
}

func newFakeElement(sel, text string) *fakeElement {
	return &fakeElement{
		sel:      sel,
		text:     text,
		finds:    make(map[string]*fakeElement),
		children: make(map[string][]*fakeElement),
	}
}

func (e *fakeElement) Selector() string { return e.sel }

func (e *fakeElement) Find(_ context.Context, selector string, _ time.Duration) (Element, bool) {
	el, ok := e.finds[selector]
	if !ok {
		return nil, false
	}
	return el, true
}

func (e *fakeElement) FindAll(_ context.Context, selector string) ([]Element, error) {
	kids := e.children[selector]
	out := make([]Element, len(kids))
	for i, k := range kids {
		out[i] = k
	}
	return out, nil
}

func (e *fakeElement) Click(_ context.Context, mech Mechanism) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks = append(e.clicks, mech)
	return e.clickErr[mech]
}

func (e *fakeElement) Fill(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fillErr != nil {
		return e.fillErr
	}
	e.fills = append(e.fills, text)
	return nil
}

func (e *fakeElement) Text(_ context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) touched() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.clicks) > 0 || len(e.fills) > 0
}

// fakeSession is an in-memory Session. It records every selector
// passed to Find, hits and misses alike, so tests can assert which
// chain candidates were attempted.
type fakeSession struct {
	elems  map[string]*fakeElement
	navErr error
	html   string

	mu        sync.Mutex
	attempted []string
	navCalls  int
	closed    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{elems: make(map[string]*fakeElement)}
}

// add registers an element reachable from the session root.
func (s *fakeSession) add(sel, text string) *fakeElement {
	el := newFakeElement(sel, text)
	s.elems[sel] = el
	return el
}

func (s *fakeSession) Find(_ context.Context, selector string, _ time.Duration) (Element, bool) {
	s.mu.Lock()
	s.attempted = append(s.attempted, selector)
	s.mu.Unlock()
	el, ok := s.elems[selector]
	if !ok {
		return nil, false
	}
	return el, true
}

func (s *fakeSession) Navigate(_ context.Context, _ string, _ time.Duration) error {
	s.mu.Lock()
	s.navCalls++
	s.mu.Unlock()
	return s.navErr
}

func (s *fakeSession) WaitStable(context.Context, time.Duration) error { return nil }

func (s *fakeSession) HTML(context.Context) (string, error) { return s.html, nil }

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) tried(selector string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.attempted {
		if sel == selector {
			return true
		}
	}
	return false
}

// fakeLauncher hands out the same session to every worker.
type fakeLauncher struct {
	session *fakeSession
	err     error
}

func (l *fakeLauncher) NewSession(context.Context) (Session, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}
