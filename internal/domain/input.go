package domain

import "github.com/shopspring/decimal"

// CityCategory classifies the residence city for the rent exemption
// denominator. Metro cities (Mumbai, Delhi, Kolkata, Chennai) earn the
// higher percentage.
type CityCategory string

const (
	CityMetro    CityCategory = "metro"
	CityNonMetro CityCategory = "non_metro"
)

// Valid reports whether c names a known city category.
func (c CityCategory) Valid() bool {
	return c == CityMetro || c == CityNonMetro
}

// OtherIncome carries non-salary income heads entered manually or taken
// from overrides; none of them come out of an employer record.
type OtherIncome struct {
	BankInterest  decimal.Decimal `yaml:"bank_interest" json:"bank_interest"`
	HouseProperty decimal.Decimal `yaml:"house_property" json:"house_property"`
	Freelance     decimal.Decimal `yaml:"freelance" json:"freelance"`
}

// Total sums the other-income heads.
func (o OtherIncome) Total() decimal.Decimal {
	return o.BankInterest.Add(o.HouseProperty).Add(o.Freelance)
}

// CanonicalTaxInput is the normalized, regime-resolved input the engine
// consumes. Built once per calculation request by the income aggregator;
// immutable thereafter.
type CanonicalTaxInput struct {
	Year   AssessmentYear `json:"assessment_year" yaml:"assessment_year"`
	Regime Regime         `json:"regime" yaml:"regime"`
	Age    AgeCategory    `json:"age_category" yaml:"age_category"`
	City   CityCategory   `json:"city_category" yaml:"city_category"`

	GrossSalary       decimal.Decimal `json:"gross_salary" yaml:"gross_salary"`
	StandardDeduction decimal.Decimal `json:"standard_deduction" yaml:"standard_deduction"`
	ProfessionalTax   decimal.Decimal `json:"professional_tax" yaml:"professional_tax"`
	OtherIncome       decimal.Decimal `json:"other_income" yaml:"other_income"`
	TDSPaid           decimal.Decimal `json:"tds_paid" yaml:"tds_paid"`

	// Exemptions and deductions actually admitted under the regime's
	// allow-list, itemized for the audit trail.
	Exemptions map[string]decimal.Decimal `json:"exemptions" yaml:"exemptions"`
	Deductions map[string]decimal.Decimal `json:"deductions" yaml:"deductions"`

	// Findings gathered while building the input (disallowed claims,
	// capped sections). Carried onto the result.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ExemptionTotal sums the admitted Section 10 exemptions.
func (c *CanonicalTaxInput) ExemptionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.Exemptions {
		total = total.Add(v)
	}
	return total
}

// DeductionTotal sums the admitted Chapter VI-A deductions.
func (c *CanonicalTaxInput) DeductionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.Deductions {
		total = total.Add(v)
	}
	return total
}

// TaxableIncome derives the figure the regime engine taxes: gross salary
// less exemptions, standard deduction and professional tax, plus other
// income, less Chapter VI-A deductions. Floored at zero.
func (c *CanonicalTaxInput) TaxableIncome() decimal.Decimal {
	taxable := c.GrossSalary.
		Sub(c.ExemptionTotal()).
		Sub(c.StandardDeduction).
		Sub(c.ProfessionalTax).
		Add(c.OtherIncome).
		Sub(c.DeductionTotal())
	if taxable.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return taxable
}
