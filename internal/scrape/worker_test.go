package scrape

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/quote-harvest/termquote/internal/retry"
	"github.com/quote-harvest/termquote/pkg/models"
)

func testWorkerConfig() WorkerConfig {
	return WorkerConfig{
		NavTimeout:    time.Second,
		StableTimeout: time.Second,
		Retry:         retry.Policy{MaxAttempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		Insurer:       "Axis Max Life Insurance",
		PlanType:      "Term Insurance",
		Now:           func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestWorkerProcessFullRecord(t *testing.T) {
	s := journeySession()
	s.html = `<html><body><p>Medical tests may be required for some applicants.</p><span>Smoker rates differ.</span></body></html>`
	launcher := &fakeLauncher{session: s}
	machine := NewMachine(testMachineConfig(testProfile()))
	w := NewWorker(launcher, nil, machine, testWorkerConfig())

	url := "https://www.axismaxlife.com/term-insurance-plans/smart-secure-plus-plan"
	rec := w.Process(context.Background(), url)

	for _, field := range models.Schema {
		if _, ok := rec[field]; !ok {
			t.Errorf("missing schema field %s", field)
		}
	}
	if rec[models.FieldPlanName] != "Axis Max Life Smart Secure Plus Plan" {
		t.Errorf("unexpected plan name: %v", rec[models.FieldPlanName])
	}
	if rec[models.FieldSourceScrapeDate] != "2025-06-01" {
		t.Errorf("unexpected scrape date: %v", rec[models.FieldSourceScrapeDate])
	}

	premium, _ := rec[models.FieldMonthlyPremium].(string)
	if !regexp.MustCompile(`^₹[0-9,]+$`).MatchString(premium) {
		t.Errorf("premium %q does not look like a rupee amount", premium)
	}

	riders, ok := rec[models.FieldAddOnRiders].([]models.Rider)
	if !ok || len(riders) == 0 {
		t.Errorf("expected extracted riders, got %v", rec[models.FieldAddOnRiders])
	}
	if rec[models.FieldMedicalRequired] != true {
		t.Errorf("expected medical_required=true, got %v", rec[models.FieldMedicalRequired])
	}
	if rec[models.FieldSmokerPremiumDiff] != true {
		t.Errorf("expected smoker_premium_diff=true, got %v", rec[models.FieldSmokerPremiumDiff])
	}
	if !s.closed {
		t.Error("worker must close its session")
	}
}

func TestWorkerNavigationFailureYieldsIdentityRecord(t *testing.T) {
	s := newFakeSession()
	s.navErr = errors.New("connection refused")
	launcher := &fakeLauncher{session: s}
	machine := NewMachine(testMachineConfig(testProfile()))
	w := NewWorker(launcher, nil, machine, testWorkerConfig())

	url := "https://www.axismaxlife.com/term-insurance-plans/smart-term-plan"
	rec := w.Process(context.Background(), url)

	if s.navCalls != 3 {
		t.Errorf("expected 3 navigation attempts, got %d", s.navCalls)
	}

	if rec[models.FieldSourceURL] != url {
		t.Errorf("unexpected source_url: %v", rec[models.FieldSourceURL])
	}
	if rec[models.FieldInsurer] != "Axis Max Life Insurance" {
		t.Errorf("unexpected insurer: %v", rec[models.FieldInsurer])
	}
	if rec[models.FieldPlanName] != "Axis Max Life Smart Term Plan" {
		t.Errorf("unexpected plan name: %v", rec[models.FieldPlanName])
	}
	for _, field := range []string{models.FieldMonthlyPremium, models.FieldMedicalRequired, models.FieldAddOnRiders, models.FieldQuoteDetails} {
		if rec[field] != models.Unavailable {
			t.Errorf("expected %s to carry the sentinel, got %v", field, rec[field])
		}
	}
}

func TestWorkerSessionFailureYieldsIdentityRecord(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("browser gone")}
	machine := NewMachine(testMachineConfig(testProfile()))
	w := NewWorker(launcher, nil, machine, testWorkerConfig())

	rec := w.Process(context.Background(), "https://www.axismaxlife.com/term-insurance-plans/smart-term-plan")
	for _, field := range models.Schema {
		if _, ok := rec[field]; !ok {
			t.Errorf("missing schema field %s", field)
		}
	}
	if rec[models.FieldMonthlyPremium] != models.Unavailable {
		t.Errorf("expected sentinel premium, got %v", rec[models.FieldMonthlyPremium])
	}
}

func TestWorkerSnapshotHook(t *testing.T) {
	s := journeySession()
	s.html = "<html><body><p>page</p></body></html>"
	launcher := &fakeLauncher{session: s}
	machine := NewMachine(testMachineConfig(testProfile()))

	var gotURL, gotHTML string
	cfg := testWorkerConfig()
	cfg.OnHTML = func(u, h string) { gotURL, gotHTML = u, h }
	w := NewWorker(launcher, nil, machine, cfg)

	url := "https://www.axismaxlife.com/term-insurance-plans/smart-secure-plus-plan"
	w.Process(context.Background(), url)

	if gotURL != url {
		t.Errorf("snapshot hook got url %q", gotURL)
	}
	if gotHTML != s.html {
		t.Error("snapshot hook must receive the page HTML")
	}
}
