package domain

import "fmt"

// UnsupportedYearError reports a request for an assessment year with no
// loaded rule configuration. Never silently defaulted to a nearby year.
type UnsupportedYearError struct {
	Year AssessmentYear
}

func (e *UnsupportedYearError) Error() string {
	return fmt.Sprintf("assessment year %s is not supported", e.Year)
}

// RegimeUnavailableError reports a regime that did not exist in the
// requested assessment year.
type RegimeUnavailableError struct {
	Year   AssessmentYear
	Regime Regime
}

func (e *RegimeUnavailableError) Error() string {
	return fmt.Sprintf("regime %q is not available for assessment year %s", e.Regime, e.Year)
}

// InvalidInputError reports a missing mandatory field or an amount that
// cannot be interpreted (negative, non-numeric).
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}

// InconsistentTaxpayerError reports income records that disagree on
// taxpayer identity during consolidation.
type InconsistentTaxpayerError struct {
	Field string
	Want  string
	Got   string
}

func (e *InconsistentTaxpayerError) Error() string {
	return fmt.Sprintf("taxpayer %s mismatch across records: %q vs %q", e.Field, e.Want, e.Got)
}

// InconsistentPeriodError reports income records spanning different
// financial years during consolidation.
type InconsistentPeriodError struct {
	Want string
	Got  string
}

func (e *InconsistentPeriodError) Error() string {
	return fmt.Sprintf("financial year mismatch across records: %q vs %q", e.Want, e.Got)
}
