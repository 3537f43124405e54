package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Chapter VI-A section keys used across records, rule allow-lists and
// deduction limits. Rule data uses the same identifiers.
const (
	Section80C     = "80c"
	Section80CCC   = "80ccc"
	Section80CCD1  = "80ccd_1"
	Section80CCD1B = "80ccd_1b"
	Section80CCD2  = "80ccd_2" // employer NPS contribution
	Section80D     = "80d"
	Section80G     = "80g"
	Section80TTA   = "80tta"

	// DeductionProfessionalTax is the Section 16(iii) key. It rides in the
	// same allow-list namespace as the Chapter VI-A sections so rule data
	// can grant or withhold it per regime.
	DeductionProfessionalTax = "professional_tax"
)

// Section 10 exemption keys.
const (
	ExemptionHRA             = "hra"
	ExemptionLTA             = "lta"
	ExemptionGratuity        = "gratuity"
	ExemptionLeaveEncashment = "leave_encashment"
	ExemptionOther           = "other"
)

// IncomeRecord is one employer's raw salary and deduction figures for a
// financial year, as produced by the extraction collaborator or manual
// entry. Read-only once constructed.
type IncomeRecord struct {
	EmployeePAN  string `yaml:"employee_pan" json:"employee_pan"`
	EmployeeName string `yaml:"employee_name" json:"employee_name"`
	EmployerName string `yaml:"employer_name" json:"employer_name"`
	EmployerTAN  string `yaml:"employer_tan" json:"employer_tan"`

	// FinancialYear is the span the income belongs to, e.g. "2023-24".
	FinancialYear string `yaml:"financial_year" json:"financial_year"`

	// Gross salary components per Section 17.
	SalaryIncome  decimal.Decimal `yaml:"salary_income" json:"salary_income"`     // 17(1)
	Perquisites   decimal.Decimal `yaml:"perquisites" json:"perquisites"`         // 17(2)
	ProfitsInLieu decimal.Decimal `yaml:"profits_in_lieu" json:"profits_in_lieu"` // 17(3)

	BasicSalary       decimal.Decimal `yaml:"basic_salary" json:"basic_salary"`
	DearnessAllowance decimal.Decimal `yaml:"dearness_allowance" json:"dearness_allowance"`
	HRAReceived       decimal.Decimal `yaml:"hra_received" json:"hra_received"`
	LTAReceived       decimal.Decimal `yaml:"lta_received" json:"lta_received"`

	// Itemized Section 10 exemptions claimed through the employer.
	Exemptions map[string]decimal.Decimal `yaml:"exemptions" json:"exemptions"`

	// Itemized Chapter VI-A deductions claimed through the employer.
	Deductions map[string]decimal.Decimal `yaml:"deductions" json:"deductions"`

	ProfessionalTax decimal.Decimal `yaml:"professional_tax" json:"professional_tax"`

	TDSDeducted  decimal.Decimal `yaml:"tds_deducted" json:"tds_deducted"`
	TDSDeposited decimal.Decimal `yaml:"tds_deposited" json:"tds_deposited"`

	// Per-field extraction confidence, 0..1; absent means manual entry.
	FieldConfidence map[string]float64 `yaml:"field_confidence,omitempty" json:"field_confidence,omitempty"`
}

// GrossSalary is the Section 17 total for the record.
func (r *IncomeRecord) GrossSalary() decimal.Decimal {
	return r.SalaryIncome.Add(r.Perquisites).Add(r.ProfitsInLieu)
}

// ExemptionTotal sums the itemized Section 10 exemptions.
func (r *IncomeRecord) ExemptionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r.Exemptions {
		total = total.Add(v)
	}
	return total
}

// Validate enforces the mandatory identity and income fields; optional
// fields are tolerated as zero.
func (r *IncomeRecord) Validate() error {
	if strings.TrimSpace(r.EmployeePAN) == "" {
		return &InvalidInputError{Field: "employee_pan", Reason: "mandatory field is missing"}
	}
	if strings.TrimSpace(r.EmployerName) == "" && strings.TrimSpace(r.EmployerTAN) == "" {
		return &InvalidInputError{Field: "employer", Reason: "employer name or TAN is required"}
	}
	if !AssessmentYear(r.FinancialYear).Valid() {
		return &InvalidInputError{Field: "financial_year", Reason: "malformed or missing financial year"}
	}
	if r.SalaryIncome.IsZero() && r.Perquisites.IsZero() && r.ProfitsInLieu.IsZero() {
		return &InvalidInputError{Field: "salary_income", Reason: "record carries no income totals"}
	}
	for _, amounts := range []map[string]decimal.Decimal{r.Exemptions, r.Deductions} {
		for key, v := range amounts {
			if v.LessThan(decimal.Zero) {
				return &InvalidInputError{Field: key, Reason: "amount cannot be negative"}
			}
		}
	}
	for _, pair := range []struct {
		field string
		value decimal.Decimal
	}{
		{"salary_income", r.SalaryIncome},
		{"perquisites", r.Perquisites},
		{"profits_in_lieu", r.ProfitsInLieu},
		{"basic_salary", r.BasicSalary},
		{"hra_received", r.HRAReceived},
		{"lta_received", r.LTAReceived},
		{"professional_tax", r.ProfessionalTax},
		{"tds_deducted", r.TDSDeducted},
		{"tds_deposited", r.TDSDeposited},
	} {
		if pair.value.LessThan(decimal.Zero) {
			return &InvalidInputError{Field: pair.field, Reason: "amount cannot be negative"}
		}
	}
	return nil
}

// EmployerKey identifies the issuer for duplicate detection: TAN when
// present, otherwise the normalized employer name.
func (r *IncomeRecord) EmployerKey() string {
	if tan := strings.TrimSpace(r.EmployerTAN); tan != "" {
		return strings.ToUpper(tan)
	}
	return strings.ToUpper(strings.Join(strings.Fields(r.EmployerName), " "))
}

// EmployerSlice is the per-employer contribution retained on a
// consolidated record for the audit trail.
type EmployerSlice struct {
	EmployerName string          `json:"employer_name" yaml:"employer_name"`
	EmployerTAN  string          `json:"employer_tan,omitempty" yaml:"employer_tan,omitempty"`
	GrossSalary  decimal.Decimal `json:"gross_salary" yaml:"gross_salary"`
	TDSDeducted  decimal.Decimal `json:"tds_deducted" yaml:"tds_deducted"`
}

// ConsolidatedIncomeRecord is the arithmetic sum of several IncomeRecords
// for one taxpayer and financial year, plus the validation findings
// gathered while merging. Created by the consolidator, consumed once by
// the income aggregator.
type ConsolidatedIncomeRecord struct {
	IncomeRecord

	SourceCount int             `json:"source_count" yaml:"source_count"`
	Employers   []EmployerSlice `json:"employers" yaml:"employers"`
	Warnings    []Warning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
