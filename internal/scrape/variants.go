// internal/scrape/variants.go
//
// Declarative configuration for the interaction machine: the form
// variants with their required field sets, and the selector chains for
// every later stage. The machine itself is variant-agnostic; the data
// here reflects the observed page layouts and their frequency, which
// is why the variant order matters and must be preserved.
package scrape

import (
	"time"

	"github.com/quote-harvest/termquote/pkg/models"
)

// StepOp is the interaction a form step performs on its element.
type StepOp string

const (
	OpClick StepOp = "click"
	OpFill  StepOp = "fill"
)

// FormStep is one required field of a form variant.
type FormStep struct {
	Name  string
	Chain SelectorChain
	Op    StepOp
	Value string // for OpFill
}

// Variant is one alternative layout of the quote-request form. All
// steps are required: if any step's chain resolves to nothing the
// variant is abandoned before anything is clicked or filled.
type Variant struct {
	Name   string
	Steps  []FormStep
	Submit SelectorChain
}

// ModalChains locates the demographics modal that follows form submission.
type ModalChains struct {
	Probe      SelectorChain // presence probe; absence skips the state
	Gender     SelectorChain
	Tobacco    SelectorChain
	Occupation SelectorChain
	Education  SelectorChain
	Submit     SelectorChain // "Check Coverage"
}

// CoverageChains locates the coverage form where the monthly premium appears.
type CoverageChains struct {
	Form      SelectorChain
	CoverTill SelectorChain // optional "cover till age" choice
	Premium   SelectorChain
	Proceed   SelectorChain
}

// RiderPopupChains locates the optional pre-rider popup.
type RiderPopupChains struct {
	Probe   SelectorChain
	Proceed SelectorChain
}

// RiderChains locates the add-on rider cards. Card and the per-card
// chains are resolved relative to the container.
type RiderChains struct {
	Container SelectorChain
	Card      string
	Name      SelectorChain
	Coverage  SelectorChain
	Premium   SelectorChain
	Skip      SelectorChain
}

// IdentityChains locates the final personal-details form.
type IdentityChains struct {
	FirstName  SelectorChain
	MiddleName SelectorChain
	LastName   SelectorChain
	Email      SelectorChain
	Income     SelectorChain
	Pincode    SelectorChain
	Agreement  SelectorChain
	Submit     SelectorChain
	Proceed    SelectorChain
}

// QuoteChains locates the final quote summary card. AddOnTitles is
// resolved relative to the card, all at once.
type QuoteChains struct {
	Card           SelectorChain
	EquoteNumber   SelectorChain
	PolicyName     SelectorChain
	LifeCover      SelectorChain
	CoverTillAge   SelectorChain
	BasePremium    SelectorChain
	AddOnTitles    string
	BasePlusAddOns SelectorChain
	GSTAmount      SelectorChain
	TotalAmount    SelectorChain
	SecondYear     SelectorChain
}

// MachineConfig carries everything the interaction machine needs:
// variant priority, activation order, timeouts, selector chains and the
// injected form answers.
type MachineConfig struct {
	Variants []Variant
	// CascadeVariants makes the machine attempt every variant in
	// sequence regardless of intermediate success, matching an older
	// site behavior. Default is to stop at the first handled variant.
	CascadeVariants bool
	Activation      []Mechanism

	StepTimeout   time.Duration // per-candidate selector wait
	ProbeTimeout  time.Duration // optional-state presence probe
	SettleTimeout time.Duration // page settle after submits/clicks

	Modal      ModalChains
	Coverage   CoverageChains
	RiderPopup RiderPopupChains
	Riders     RiderChains
	Identity   IdentityChains
	Quote      QuoteChains

	Profile models.Profile
}

// DefaultVariants returns the known form layouts in fixed priority
// order: the lead form is by far the most common, the label grid next,
// the hybrid layout last. The order is a correctness-bearing policy
// against the real site, not an arbitrary choice.
func DefaultVariants(p models.Profile) []Variant {
	return []Variant{
		{
			Name: "lead-form",
			Steps: []FormStep{
				{Name: "full_name", Chain: SelectorChain{"#fullName"}, Op: OpFill, Value: p.FullName},
				{Name: "dob", Chain: SelectorChain{`input[name="dob"]`}, Op: OpFill, Value: p.DateOfBirth},
				{Name: "nri_no", Chain: SelectorChain{`label[for="64762"]`}, Op: OpClick},
				{Name: "phone", Chain: SelectorChain{`input[name="phoneNumber"]`}, Op: OpFill, Value: p.Phone},
				{Name: "income_band", Chain: SelectorChain{`label[for="64764"]`}, Op: OpClick},
			},
			Submit: SelectorChain{"button.gtm-leadform"},
		},
		{
			Name: "label-grid",
			Steps: []FormStep{
				{Name: "gender_female", Chain: SelectorChain{`label[for="233"]`}, Op: OpClick},
				{Name: "tobacco_no", Chain: SelectorChain{`label[for="239"]`}, Op: OpClick},
				{Name: "sum_assured_1cr", Chain: SelectorChain{`label[for="16301"]`}, Op: OpClick},
			},
			Submit: SelectorChain{"button.gtm-leadform2"},
		},
		{
			Name: "hybrid-lead",
			Steps: []FormStep{
				{Name: "full_name", Chain: SelectorChain{"#fullName"}, Op: OpFill, Value: p.FullName},
				{Name: "dob", Chain: SelectorChain{`input[name="dob"]`}, Op: OpFill, Value: p.DateOfBirth},
				{Name: "nri_no", Chain: SelectorChain{`label[for="42508"]`, `label[for="64762"]`}, Op: OpClick},
				{Name: "phone", Chain: SelectorChain{`input[name="phoneNumber"]`, "input#3"}, Op: OpFill, Value: p.Phone},
				{Name: "income_band", Chain: SelectorChain{`label[for="16298"]`, `label[for="64764"]`}, Op: OpClick},
			},
			Submit: SelectorChain{"button.gtm-leadform", "button.gtm-leadform2"},
		},
	}
}

// DefaultMachineConfig returns the full interaction configuration for
// the production page layouts, with form answers taken from profile.
func DefaultMachineConfig(profile models.Profile) MachineConfig {
	return MachineConfig{
		Variants:      DefaultVariants(profile),
		Activation:    DefaultActivation(),
		StepTimeout:   2 * time.Second,
		ProbeTimeout:  3 * time.Second,
		SettleTimeout: 2 * time.Second,
		Modal: ModalChains{
			Probe:      SelectorChain{`label[for="gender_F"]`},
			Gender:     SelectorChain{`label[for="gender_F"]`},
			Tobacco:    SelectorChain{`label[for="tobacco_No"]`},
			Occupation: SelectorChain{`label[for="occupation_salaried"]`},
			Education:  SelectorChain{`label[for="education_graduateAndAbove"]`},
			Submit: SelectorChain{
				"button#viewPlans",
				"button.gtm-leadform",
				`button[type="submit"]`,
				"button.btn-primary",
			},
		},
		Coverage: CoverageChains{
			Form: SelectorChain{
				".jsx-1782489574",
				`form[class*="form"]`,
				`div[class*="form"]`,
				`section[class*="form"]`,
			},
			CoverTill: SelectorChain{`label[for="75"]`},
			Premium: SelectorChain{
				`label[for="75"] .premium`,
				".premium",
				`[class*="premium"]`,
			},
			Proceed: SelectorChain{
				"button#viewPlans",
				`button[type="submit"]`,
				"button.btn-primary",
			},
		},
		RiderPopup: RiderPopupChains{
			Probe: SelectorChain{"div.rider-popup-content"},
			Proceed: SelectorChain{
				"div.rider-popup-content button#viewPlans",
				"button#viewPlans",
			},
		},
		Riders: RiderChains{
			Container: SelectorChain{"div.rider-container"},
			Card:      ".rider-card",
			Name:      SelectorChain{"span.title"},
			Coverage:  SelectorChain{".coverage-amount"},
			Premium:   SelectorChain{".rider-premium"},
			Skip:      SelectorChain{"button#viewPlans"},
		},
		Identity: IdentityChains{
			FirstName:  SelectorChain{"input#firstName"},
			MiddleName: SelectorChain{"input#middleName"},
			LastName:   SelectorChain{"input#lastName"},
			Email:      SelectorChain{"input#email"},
			Income:     SelectorChain{"input#eligibilityAnnualIncome"},
			Pincode:    SelectorChain{"input#pincode"},
			Agreement:  SelectorChain{`input[type="checkbox"]`},
			Submit:     SelectorChain{`button[type="submit"]`},
			Proceed:    SelectorChain{"button#viewPlans.unified-button-primary", "button#viewPlans"},
		},
		Quote: QuoteChains{
			Card:         SelectorChain{"div.jsx-1807434918.px-2.card"},
			EquoteNumber: SelectorChain{"div.jsx-933454567.middle.sec.undefined.text-xs.data-value span"},
			PolicyName:   SelectorChain{"div.jsx-933454567.middle.sec.undefined.text-sm.data-value span"},
			LifeCover:    SelectorChain{"div.jsx-933454567.middle.sec.undefined.text-sm.data-value span.life-cover"},
			CoverTillAge: SelectorChain{"div.jsx-933454567.middle.sec.undefined.text-sm.data-value span.cover-age"},
			BasePremium:  SelectorChain{"div.jsx-933454567.middle.sec.undefined.text-sm.data-value span.font-weight-bold"},
			AddOnTitles:  "div.jsx-933454567.accordion-title span",
			BasePlusAddOns: SelectorChain{
				"div.jsx-933454567.baseAddOns span.font-weight-semi-bold",
			},
			GSTAmount: SelectorChain{
				"div.jsx-933454567.gst-amount span.font-weight-semi-bold",
			},
			TotalAmount: SelectorChain{
				"div.jsx-1297005779.flex.justify-between.py-3 p.text-sm.font-bold.discount-summary-label:last-child",
			},
			SecondYear: SelectorChain{
				"div.jsx-1297005779.flex.justify-between.py-3.border-t p.text-sm.font-bold.discount-summary-label:last-child",
			},
		},
		Profile: profile,
	}
}
