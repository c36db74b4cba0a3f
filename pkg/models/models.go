package models

// Unavailable marks a schema field the scraper could not resolve.
// It is a single fixed sentinel so consumers can distinguish "we looked
// and it was not there" from an absent key or an empty string.
const Unavailable = "N/A"

// Schema field names. Every final Record contains exactly these keys.
const (
	FieldSourceURL         = "source_url"
	FieldSourceScrapeDate  = "source_scrape_date"
	FieldInsurer           = "insurer"
	FieldPlanName          = "plan_name"
	FieldPlanType          = "plan_type"
	FieldMonthlyPremium    = "monthly_premium"
	FieldMedicalRequired   = "medical_required"
	FieldSmokerPremiumDiff = "smoker_premium_diff"
	FieldAddOnRiders       = "add_on_riders"
	FieldQuoteDetails      = "quote_details"
)

// Schema is the fixed set of fields a normalized Record carries, in
// output order.
var Schema = []string{
	FieldSourceURL,
	FieldSourceScrapeDate,
	FieldInsurer,
	FieldPlanName,
	FieldPlanType,
	FieldMonthlyPremium,
	FieldMedicalRequired,
	FieldSmokerPremiumDiff,
	FieldAddOnRiders,
	FieldQuoteDetails,
}

// Record is the accumulating output for one plan page. Values are
// field-typed: string, bool, []Rider or QuoteDetails. A Record is owned
// exclusively by its worker until it is handed to the result collection.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Rider is one add-on rider offered alongside the base plan.
type Rider struct {
	Name     string `json:"name"`
	Coverage string `json:"coverage"`
	Premium  string `json:"premium"`
}

// QuoteDetails is the final quote breakdown extracted from the summary
// card at the end of the journey.
type QuoteDetails struct {
	EquoteNumber          string   `json:"equote_number,omitempty"`
	PolicyName            string   `json:"policy_name,omitempty"`
	LifeCover             string   `json:"life_cover,omitempty"`
	CoverTillAge          string   `json:"cover_till_age,omitempty"`
	BasePremium           string   `json:"base_premium,omitempty"`
	AddOns                []string `json:"add_ons,omitempty"`
	BasePlusAddOns        string   `json:"base_plus_addons,omitempty"`
	GSTAmount             string   `json:"gst_amount,omitempty"`
	TotalAmount           string   `json:"total_amount,omitempty"`
	PremiumFromSecondYear string   `json:"premium_from_second_year,omitempty"`
}

// Empty reports whether no detail was extracted at all.
func (q QuoteDetails) Empty() bool {
	return q.EquoteNumber == "" && q.PolicyName == "" && q.LifeCover == "" &&
		q.CoverTillAge == "" && q.BasePremium == "" && len(q.AddOns) == 0 &&
		q.BasePlusAddOns == "" && q.GSTAmount == "" && q.TotalAmount == "" &&
		q.PremiumFromSecondYear == ""
}

// Profile holds the demographic and identity answers used to drive the
// quote forms. They are injected configuration, not constants, so the
// interaction machine can run against synthetic fixtures.
type Profile struct {
	FullName     string
	FirstName    string
	MiddleName   string
	LastName     string
	DateOfBirth  string // dd/mm/yyyy, as the forms expect
	Phone        string
	Email        string
	AnnualIncome string
	Pincode      string
}

// Result pairs a finished Record with its position in the input URL set.
type Result struct {
	Index  int
	URL    string
	Record Record
}
