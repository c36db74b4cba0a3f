package scrape

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolveReturnsFirstMatch(t *testing.T) {
	s := newFakeSession()
	s.add("#b", "bravo")
	s.add("#c", "charlie")

	el, ok := Resolve(context.Background(), s, SelectorChain{"#a", "#b", "#c"}, 10*time.Millisecond)
	if !ok {
		t.Fatal("expected a match")
	}
	if el.Selector() != "#b" {
		t.Errorf("expected #b to win, got %s", el.Selector())
	}
	if !s.tried("#a") {
		t.Error("expected the first candidate to be attempted")
	}
	if s.tried("#c") {
		t.Error("candidates after the first match must not be attempted")
	}
}

func TestResolveExhaustedChain(t *testing.T) {
	s := newFakeSession()

	el, ok := Resolve(context.Background(), s, SelectorChain{"#a", "#b"}, 10*time.Millisecond)
	if ok || el != nil {
		t.Fatal("expected no match on an exhausted chain")
	}
	for _, sel := range []string{"#a", "#b"} {
		if !s.tried(sel) {
			t.Errorf("expected %s to be attempted", sel)
		}
	}
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	s := newFakeSession()
	s.add("#a", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := Resolve(ctx, s, SelectorChain{"#a"}, 10*time.Millisecond); ok {
		t.Error("expected no match under a cancelled context")
	}
	if s.tried("#a") {
		t.Error("no candidate should be attempted under a cancelled context")
	}
}

func TestActivateFallsThroughMechanisms(t *testing.T) {
	el := newFakeElement("#go", "")
	el.clickErr = map[Mechanism]error{
		MechanismClick:    context.DeadlineExceeded,
		MechanismDispatch: context.DeadlineExceeded,
	}

	if err := activate(context.Background(), el, DefaultActivation()); err != nil {
		t.Fatalf("expected the script mechanism to succeed, got %v", err)
	}
	want := []Mechanism{MechanismClick, MechanismDispatch, MechanismScript}
	if len(el.clicks) != len(want) {
		t.Fatalf("expected %d click attempts, got %d", len(want), len(el.clicks))
	}
	for i, mech := range want {
		if el.clicks[i] != mech {
			t.Errorf("attempt %d: expected %s, got %s", i, mech, el.clicks[i])
		}
	}
}

func TestActivateExhausted(t *testing.T) {
	el := newFakeElement("#go", "")
	el.clickErr = map[Mechanism]error{
		MechanismClick:    context.DeadlineExceeded,
		MechanismDispatch: context.DeadlineExceeded,
		MechanismScript:   context.DeadlineExceeded,
	}

	err := activate(context.Background(), el, DefaultActivation())
	if !errors.Is(err, ErrActivationFailed) {
		t.Fatalf("expected ErrActivationFailed, got %v", err)
	}
}
