package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AssessmentYear identifies an Indian assessment year in "YYYY-YY" form,
// e.g. "2024-25". It is the lookup key for every rule set.
type AssessmentYear string

// Valid reports whether the year label is well formed: a four digit start
// year followed by the two digit suffix of the immediately following year.
func (ay AssessmentYear) Valid() bool {
	parts := strings.Split(string(ay), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return (start+1)%100 == end
}

// StartYear returns the first calendar year of the assessment year,
// or 0 if the label is malformed.
func (ay AssessmentYear) StartYear() int {
	if !ay.Valid() {
		return 0
	}
	start, _ := strconv.Atoi(strings.Split(string(ay), "-")[0])
	return start
}

// PriorYear returns the assessment year immediately before this one.
func (ay AssessmentYear) PriorYear() AssessmentYear {
	start := ay.StartYear()
	if start == 0 {
		return ""
	}
	return AssessmentYear(fmt.Sprintf("%04d-%02d", start-1, start%100))
}

// FinancialYearFor converts a financial year label ("2023-24") to the
// assessment year in which that income is assessed ("2024-25").
func FinancialYearFor(fy string) (AssessmentYear, error) {
	candidate := AssessmentYear(fy)
	if !candidate.Valid() {
		return "", &InvalidInputError{Field: "financial_year", Reason: fmt.Sprintf("malformed financial year %q", fy)}
	}
	start := candidate.StartYear() + 1
	return AssessmentYear(fmt.Sprintf("%04d-%02d", start, (start+1)%100)), nil
}
