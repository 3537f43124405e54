// Package config parses and validates case files: the YAML or JSON
// documents that describe one taxpayer's calculation request.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taxghar/taxghar/internal/calculation"
	"github.com/taxghar/taxghar/internal/consolidate"
	"github.com/taxghar/taxghar/internal/domain"
)

// lowConfidenceThreshold marks extracted fields worth a second look.
// Below it the figure is still used, but the caller is told.
const lowConfidenceThreshold = 0.5

// CaseFile is the on-disk request format: taxpayer context, one income
// record per employer, and the optional component inputs.
type CaseFile struct {
	AssessmentYear domain.AssessmentYear `yaml:"assessment_year" json:"assessment_year"`
	Regimes        []domain.Regime       `yaml:"regimes" json:"regimes"`
	Age            domain.AgeCategory    `yaml:"age_category" json:"age_category"`

	Records []domain.IncomeRecord `yaml:"records" json:"records"`

	Components calculation.ComponentInputs `yaml:"components" json:"components"`
	Arrears    []calculation.ArrearSlice   `yaml:"arrears,omitempty" json:"arrears,omitempty"`
}

// InputParser handles parsing of case files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a case file from a YAML or JSON file.
func (ip *InputParser) LoadFromFile(filename string) (*CaseFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Load(data)
}

// Load parses and validates case file bytes. JSON documents parse fine
// through the YAML path.
func (ip *InputParser) Load(data []byte) (*CaseFile, error) {
	var cf CaseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	if err := ip.ValidateCaseFile(&cf); err != nil {
		return nil, fmt.Errorf("case file validation failed: %w", err)
	}
	return &cf, nil
}

// ValidateCaseFile validates the loaded case file.
func (ip *InputParser) ValidateCaseFile(cf *CaseFile) error {
	if len(cf.Records) == 0 {
		return fmt.Errorf("at least one income record is required")
	}
	for i := range cf.Records {
		if err := cf.Records[i].Validate(); err != nil {
			return fmt.Errorf("record %d validation failed: %w", i, err)
		}
	}
	if cf.AssessmentYear != "" && !cf.AssessmentYear.Valid() {
		return fmt.Errorf("assessment year %q is malformed, expected YYYY-YY", cf.AssessmentYear)
	}
	for _, regime := range cf.Regimes {
		if !regime.Valid() {
			return fmt.Errorf("unknown regime %q", regime)
		}
	}
	if cf.Age != "" && !cf.Age.Valid() {
		return fmt.Errorf("unknown age category %q", cf.Age)
	}
	if city := cf.Components.City; city != "" && !city.Valid() {
		return fmt.Errorf("unknown city category %q", city)
	}
	for i, slice := range cf.Arrears {
		if !slice.Year.Valid() {
			return fmt.Errorf("arrear %d: year %q is malformed", i, slice.Year)
		}
	}
	return nil
}

// ToRequest turns the case file into a calculation request. Multiple
// records are consolidated first; a single record passes through as-is.
func (cf *CaseFile) ToRequest() (*calculation.Request, error) {
	req := &calculation.Request{
		Year:       cf.AssessmentYear,
		Regimes:    cf.Regimes,
		Age:        cf.Age,
		Components: cf.Components,
		Arrears:    cf.Arrears,
	}
	if len(cf.Records) == 1 {
		req.Record = &cf.Records[0]
		return req, nil
	}
	merged, err := consolidate.Consolidate(cf.Records)
	if err != nil {
		return nil, err
	}
	req.Consolidated = merged
	return req, nil
}

// ConfidenceFindings flags extracted fields whose confidence score fell
// below the review threshold. The figures are used regardless; these
// are advisories for the caller.
func (ip *InputParser) ConfidenceFindings(cf *CaseFile) []domain.Warning {
	var findings []domain.Warning
	for i := range cf.Records {
		r := &cf.Records[i]
		for field, score := range r.FieldConfidence {
			if score >= lowConfidenceThreshold {
				continue
			}
			findings = append(findings, domain.Warning{
				Code: domain.WarnMissingOptional,
				Message: fmt.Sprintf("field %q from %s was extracted with low confidence (%.2f); verify against the source document",
					field, r.EmployerName, score),
				Employers: []string{r.EmployerName},
			})
		}
	}
	return findings
}
