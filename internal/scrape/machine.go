// internal/scrape/machine.go
package scrape

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quote-harvest/termquote/pkg/models"
)

// State names one step of the quote journey. States form a directed
// graph; StateDone and StateAbandoned are terminal.
type State string

const (
	StateVariantSelect State = "variant_select"
	StateModal         State = "demographics_modal"
	StateCoverage      State = "coverage_form"
	StateRiderPopup    State = "rider_popup"
	StateRiders        State = "rider_extraction"
	StateIdentity      State = "identity_form"
	StateQuote         State = "quote_extraction"
	StateDone          State = "done"
	StateAbandoned     State = "abandoned"
)

// Machine drives the multi-stage quote journey on a single session.
// It is strictly forward-only: once a state is left it is never
// retried, and a failed required step transitions to StateAbandoned.
// Extraction states are read-only and record whatever subset of their
// fields resolves; a single field miss never aborts them.
type Machine struct {
	cfg MachineConfig
}

// NewMachine creates a machine for the given interaction configuration.
func NewMachine(cfg MachineConfig) *Machine {
	if len(cfg.Activation) == 0 {
		cfg.Activation = DefaultActivation()
	}
	return &Machine{cfg: cfg}
}

type stateFn func(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State

// Run executes the journey on s, merging every field it manages to
// extract into rec, and returns the terminal state reached. It never
// returns an error: partial progress is progress.
func (m *Machine) Run(ctx context.Context, s Session, rec models.Record) State {
	handlers := map[State]stateFn{
		StateVariantSelect: m.stateVariantSelect,
		StateModal:         m.stateModal,
		StateCoverage:      m.stateCoverage,
		StateRiderPopup:    m.stateRiderPopup,
		StateRiders:        m.stateRiders,
		StateIdentity:      m.stateIdentity,
		StateQuote:         m.stateQuote,
	}

	lg := log.With().Str("component", "machine").Logger()

	cur := StateVariantSelect
	for cur != StateDone && cur != StateAbandoned {
		if ctx.Err() != nil {
			lg.Warn().Str("state", string(cur)).Msg("Context cancelled mid-journey")
			return StateAbandoned
		}
		fn, ok := handlers[cur]
		if !ok {
			lg.Error().Str("state", string(cur)).Msg("Unknown state")
			return StateAbandoned
		}
		next := fn(ctx, s, rec, lg.With().Str("state", string(cur)).Logger())
		lg.Debug().
			Str("state", string(cur)).
			Str("next", string(next)).
			Msg("State transition")
		cur = next
	}
	return cur
}

// stateVariantSelect attempts the form variants in fixed priority
// order. A variant is only acted on when its entire required field set
// resolves; otherwise it is abandoned untouched and the next variant is
// tried. By default the first handled variant wins.
func (m *Machine) stateVariantSelect(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	handled := false
	for _, v := range m.cfg.Variants {
		if m.tryVariant(ctx, s, v, lg) {
			handled = true
			lg.Info().Str("variant", v.Name).Msg("Form variant handled")
			if !m.cfg.CascadeVariants {
				break
			}
		}
	}
	if !handled {
		lg.Warn().Err(ErrVariantsExhausted).Msg("Abandoning journey")
		return StateAbandoned
	}
	return StateModal
}

// tryVariant resolves all of v's required fields before performing any
// interaction, so a missing field never leaves a half-filled form.
func (m *Machine) tryVariant(ctx context.Context, s Session, v Variant, lg zerolog.Logger) bool {
	type boundStep struct {
		step FormStep
		el   Element
	}

	bound := make([]boundStep, 0, len(v.Steps))
	for _, step := range v.Steps {
		el, ok := Resolve(ctx, s, step.Chain, m.cfg.StepTimeout)
		if !ok {
			lg.Debug().
				Str("variant", v.Name).
				Str("field", step.Name).
				Msg("Required field unresolved, abandoning variant")
			return false
		}
		bound = append(bound, boundStep{step: step, el: el})
	}
	submit, ok := Resolve(ctx, s, v.Submit, m.cfg.StepTimeout)
	if !ok {
		lg.Debug().Str("variant", v.Name).Msg("Submit button unresolved, abandoning variant")
		return false
	}

	for _, b := range bound {
		var err error
		switch b.step.Op {
		case OpFill:
			err = b.el.Fill(ctx, b.step.Value)
		default:
			err = activate(ctx, b.el, m.cfg.Activation)
		}
		if err != nil {
			lg.Warn().
				Str("variant", v.Name).
				Str("field", b.step.Name).
				Err(err).
				Msg("Field interaction failed, abandoning variant")
			return false
		}
	}

	if err := activate(ctx, submit, m.cfg.Activation); err != nil {
		lg.Warn().Str("variant", v.Name).Err(err).Msg("Submit failed")
		return false
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return true
}

// stateModal resolves the demographics modal. The modal is optional:
// some journeys land directly on the coverage form, so an absent probe
// skips forward. Once present, all four answers are required.
func (m *Machine) stateModal(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	if _, ok := Resolve(ctx, s, m.cfg.Modal.Probe, m.cfg.ProbeTimeout); !ok {
		lg.Debug().Msg("No demographics modal, skipping")
		return StateCoverage
	}

	answers := []struct {
		name  string
		chain SelectorChain
	}{
		{"gender", m.cfg.Modal.Gender},
		{"tobacco", m.cfg.Modal.Tobacco},
		{"occupation", m.cfg.Modal.Occupation},
		{"education", m.cfg.Modal.Education},
	}
	for _, a := range answers {
		el, ok := Resolve(ctx, s, a.chain, m.cfg.StepTimeout)
		if !ok {
			lg.Warn().Str("answer", a.name).Msg("Modal answer unresolved")
			return StateAbandoned
		}
		if err := activate(ctx, el, m.cfg.Activation); err != nil {
			lg.Warn().Str("answer", a.name).Err(err).Msg("Modal answer click failed")
			return StateAbandoned
		}
	}

	submit, ok := Resolve(ctx, s, m.cfg.Modal.Submit, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Modal submit unresolved")
		return StateAbandoned
	}
	if err := activate(ctx, submit, m.cfg.Activation); err != nil {
		lg.Warn().Err(newStepError(string(StateModal), KindActivation, err)).Msg("Modal submit failed")
		return StateAbandoned
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return StateCoverage
}

// stateCoverage selects the coverage term and extracts the monthly
// premium. Premium extraction is read-only: a miss costs the field,
// not the state.
func (m *Machine) stateCoverage(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	if _, ok := Resolve(ctx, s, m.cfg.Coverage.Form, m.cfg.StepTimeout); !ok {
		lg.Warn().Err(newStepError(string(StateCoverage), KindAbandoned, nil)).Msg("Coverage form not found")
		return StateAbandoned
	}

	// The cover-till-age choice repriced the premium on the real site;
	// missing it only means we read the default term's premium.
	if el, ok := Resolve(ctx, s, m.cfg.Coverage.CoverTill, m.cfg.StepTimeout); ok {
		if err := activate(ctx, el, m.cfg.Activation); err != nil {
			lg.Debug().Err(err).Msg("Cover-till selection failed, keeping default")
		}
		_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	}

	if el, ok := Resolve(ctx, s, m.cfg.Coverage.Premium, m.cfg.StepTimeout); ok {
		if text, err := el.Text(ctx); err == nil && strings.TrimSpace(text) != "" {
			rec[models.FieldMonthlyPremium] = strings.TrimSpace(text)
			lg.Info().Str("premium", strings.TrimSpace(text)).Msg("Monthly premium extracted")
		}
	} else {
		lg.Warn().Msg("Premium element not found")
	}

	proceed, ok := Resolve(ctx, s, m.cfg.Coverage.Proceed, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Proceed button not found")
		return StateAbandoned
	}
	if err := activate(ctx, proceed, m.cfg.Activation); err != nil {
		lg.Warn().Err(newStepError(string(StateCoverage), KindActivation, err)).Msg("Proceed failed")
		return StateAbandoned
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return StateRiderPopup
}

// stateRiderPopup probes for the interstitial popup shown before the
// rider list. Absence is success.
func (m *Machine) stateRiderPopup(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	if _, ok := Resolve(ctx, s, m.cfg.RiderPopup.Probe, m.cfg.ProbeTimeout); !ok {
		lg.Debug().Msg("No rider popup, skipping")
		return StateRiders
	}

	proceed, ok := Resolve(ctx, s, m.cfg.RiderPopup.Proceed, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Rider popup proceed button not found")
		return StateAbandoned
	}
	if err := activate(ctx, proceed, m.cfg.Activation); err != nil {
		lg.Warn().Err(err).Msg("Rider popup dismissal failed")
		return StateAbandoned
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return StateRiders
}

// stateRiders extracts the add-on rider cards, then skips past them.
// Per-card sub-fields that miss are recorded as the sentinel.
func (m *Machine) stateRiders(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	container, ok := Resolve(ctx, s, m.cfg.Riders.Container, m.cfg.ProbeTimeout)
	if ok {
		cards, err := container.FindAll(ctx, m.cfg.Riders.Card)
		if err != nil {
			lg.Warn().Err(err).Msg("Rider card lookup failed")
		}
		riders := make([]models.Rider, 0, len(cards))
		for _, card := range cards {
			riders = append(riders, models.Rider{
				Name:     m.scopedText(ctx, card, m.cfg.Riders.Name),
				Coverage: m.scopedText(ctx, card, m.cfg.Riders.Coverage),
				Premium:  m.scopedText(ctx, card, m.cfg.Riders.Premium),
			})
		}
		rec[models.FieldAddOnRiders] = riders
		lg.Info().Int("riders", len(riders)).Msg("Add-on riders extracted")
	} else {
		lg.Warn().Msg("Rider container not found")
	}

	skip, ok := Resolve(ctx, s, m.cfg.Riders.Skip, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Rider skip button not found")
		return StateAbandoned
	}
	if err := activate(ctx, skip, m.cfg.Activation); err != nil {
		lg.Warn().Err(newStepError(string(StateRiders), KindActivation, err)).Msg("Rider skip failed")
		return StateAbandoned
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return StateIdentity
}

// stateIdentity fills the personal-details form from the injected
// profile. Only the first field is a hard requirement; individual
// optional fields that miss are logged and skipped.
func (m *Machine) stateIdentity(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	first, ok := Resolve(ctx, s, m.cfg.Identity.FirstName, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Identity form not found")
		return StateAbandoned
	}
	if err := first.Fill(ctx, m.cfg.Profile.FirstName); err != nil {
		lg.Warn().Err(err).Msg("First name fill failed")
		return StateAbandoned
	}

	fills := []struct {
		name  string
		chain SelectorChain
		value string
	}{
		{"middle_name", m.cfg.Identity.MiddleName, m.cfg.Profile.MiddleName},
		{"last_name", m.cfg.Identity.LastName, m.cfg.Profile.LastName},
		{"email", m.cfg.Identity.Email, m.cfg.Profile.Email},
		{"annual_income", m.cfg.Identity.Income, m.cfg.Profile.AnnualIncome},
		{"pincode", m.cfg.Identity.Pincode, m.cfg.Profile.Pincode},
	}
	for _, f := range fills {
		el, ok := Resolve(ctx, s, f.chain, m.cfg.StepTimeout)
		if !ok {
			lg.Debug().Str("field", f.name).Msg("Identity field missing")
			continue
		}
		if err := el.Fill(ctx, f.value); err != nil {
			lg.Debug().Str("field", f.name).Err(err).Msg("Identity field fill failed")
		}
	}

	if el, ok := Resolve(ctx, s, m.cfg.Identity.Agreement, m.cfg.StepTimeout); ok {
		if err := activate(ctx, el, m.cfg.Activation); err != nil {
			lg.Debug().Err(err).Msg("Agreement checkbox click failed")
		}
	}
	if el, ok := Resolve(ctx, s, m.cfg.Identity.Submit, m.cfg.StepTimeout); ok {
		if err := activate(ctx, el, m.cfg.Activation); err != nil {
			lg.Debug().Err(err).Msg("Identity submit failed")
		}
		_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	}

	proceed, ok := Resolve(ctx, s, m.cfg.Identity.Proceed, m.cfg.StepTimeout)
	if !ok {
		lg.Warn().Msg("Identity proceed button not found")
		return StateAbandoned
	}
	if err := activate(ctx, proceed, m.cfg.Activation); err != nil {
		lg.Warn().Err(newStepError(string(StateIdentity), KindActivation, err)).Msg("Identity proceed failed")
		return StateAbandoned
	}
	_ = s.WaitStable(ctx, m.cfg.SettleTimeout)
	return StateQuote
}

// stateQuote reads the final quote breakdown. Read-only: every field
// that resolves is kept, the rest are simply absent.
func (m *Machine) stateQuote(ctx context.Context, s Session, rec models.Record, lg zerolog.Logger) State {
	card, ok := Resolve(ctx, s, m.cfg.Quote.Card, m.cfg.ProbeTimeout)
	if !ok {
		lg.Warn().Msg("Quote summary card not found")
		return StateAbandoned
	}

	qd := models.QuoteDetails{
		EquoteNumber:          m.scopedRaw(ctx, card, m.cfg.Quote.EquoteNumber),
		PolicyName:            m.scopedRaw(ctx, card, m.cfg.Quote.PolicyName),
		LifeCover:             m.scopedRaw(ctx, card, m.cfg.Quote.LifeCover),
		CoverTillAge:          m.scopedRaw(ctx, card, m.cfg.Quote.CoverTillAge),
		BasePremium:           m.scopedRaw(ctx, card, m.cfg.Quote.BasePremium),
		BasePlusAddOns:        m.scopedRaw(ctx, card, m.cfg.Quote.BasePlusAddOns),
		GSTAmount:             m.scopedRaw(ctx, card, m.cfg.Quote.GSTAmount),
		TotalAmount:           m.scopedRaw(ctx, card, m.cfg.Quote.TotalAmount),
		PremiumFromSecondYear: m.scopedRaw(ctx, card, m.cfg.Quote.SecondYear),
	}

	if titles, err := card.FindAll(ctx, m.cfg.Quote.AddOnTitles); err == nil {
		for _, el := range titles {
			text, err := el.Text(ctx)
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text != "" && !strings.Contains(text, "Monthly Add-ons") {
				qd.AddOns = append(qd.AddOns, text)
			}
		}
	}

	if !qd.Empty() {
		rec[models.FieldQuoteDetails] = qd
		lg.Info().Msg("Final quote details extracted")
	} else {
		lg.Warn().Msg("Quote card present but no detail resolved")
	}
	return StateDone
}

// scopedText resolves chain under scope and returns its trimmed text,
// or the sentinel when the chain misses.
func (m *Machine) scopedText(ctx context.Context, scope Finder, chain SelectorChain) string {
	text := m.scopedRaw(ctx, scope, chain)
	if text == "" {
		return models.Unavailable
	}
	return text
}

// scopedRaw is scopedText without the sentinel: misses yield "".
func (m *Machine) scopedRaw(ctx context.Context, scope Finder, chain SelectorChain) string {
	el, ok := Resolve(ctx, scope, chain, m.cfg.StepTimeout)
	if !ok {
		return ""
	}
	text, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
