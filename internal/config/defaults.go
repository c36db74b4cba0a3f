package config

import (
	"time"

	"github.com/quote-harvest/termquote/pkg/models"
)

// Default constants for application configuration
const (
	DefaultLogLevel  = "info"
	DefaultJSONLog   = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultBaseURL     = "https://www.axismaxlife.com"
	DefaultListingPath = "/term-insurance-plans"
	DefaultPathPrefix  = "/term-insurance-plans/"

	DefaultConcurrency    = 3
	DefaultMaxConcurrency = 10

	DefaultNavTimeout    = 60 * time.Second
	DefaultStableTimeout = 10 * time.Second
	DefaultStepTimeout   = 2 * time.Second
	DefaultProbeTimeout  = 3 * time.Second
	DefaultSettleTimeout = 2 * time.Second

	DefaultRetryAttempts   = 3
	DefaultRetryDelay      = 5 * time.Second
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRetryMultiplier = 2.0

	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 3

	DefaultHeadless = true
	DefaultOutput   = "term_plans.json"

	DefaultInsurer  = "Axis Max Life Insurance"
	DefaultPlanType = "Term Insurance"
)

// DefaultExcludedTerms are link substrings that mark non-plan pages on
// the listing.
func DefaultExcludedTerms() []string {
	return []string{"calculator", "claim", "settlement", "faqs", "compare"}
}

// DefaultProfile returns the fixed synthetic applicant used to drive
// the quote forms.
func DefaultProfile() models.Profile {
	return models.Profile{
		FullName:     "Aditya Jha",
		FirstName:    "Aditya",
		MiddleName:   "Kumar",
		LastName:     "Jha",
		DateOfBirth:  "01/01/1990",
		Phone:        "9876543210",
		Email:        "aditya.jha@gmail.com",
		AnnualIncome: "700000",
		Pincode:      "110001",
	}
}
