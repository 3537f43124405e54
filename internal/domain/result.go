package domain

import "github.com/shopspring/decimal"

// SlabTax is one row of the slab-wise breakdown on a result.
type SlabTax struct {
	Lower   decimal.Decimal  `json:"from" yaml:"from"`
	Upper   *decimal.Decimal `json:"to" yaml:"to"`
	Rate    decimal.Decimal  `json:"rate" yaml:"rate"`
	Taxable decimal.Decimal  `json:"taxable_amount" yaml:"taxable_amount"`
	Tax     decimal.Decimal  `json:"tax" yaml:"tax"`
}

// TaxResult is the complete outcome for one (input, regime) pair. Every
// intermediate figure is kept so a presentation layer can render a full
// audit trail without recomputation. Field names are identical across
// regimes for diffing. Immutable and safe to serialize directly.
type TaxResult struct {
	Year   AssessmentYear `json:"assessment_year" yaml:"assessment_year"`
	Regime Regime         `json:"regime" yaml:"regime"`

	GrossSalary       decimal.Decimal `json:"gross_salary" yaml:"gross_salary"`
	TaxableIncome     decimal.Decimal `json:"taxable_income" yaml:"taxable_income"`
	StandardDeduction decimal.Decimal `json:"standard_deduction" yaml:"standard_deduction"`

	TaxBeforeRebate decimal.Decimal `json:"tax_before_rebate" yaml:"tax_before_rebate"`
	Rebate          decimal.Decimal `json:"rebate" yaml:"rebate"`
	Surcharge       decimal.Decimal `json:"surcharge" yaml:"surcharge"`
	MarginalRelief  bool            `json:"marginal_relief_applied" yaml:"marginal_relief_applied"`
	Cess            decimal.Decimal `json:"cess" yaml:"cess"`
	Section89Relief decimal.Decimal `json:"section_89_relief" yaml:"section_89_relief"`
	TotalLiability  decimal.Decimal `json:"total_liability" yaml:"total_liability"`

	TDSPaid decimal.Decimal `json:"tds_paid" yaml:"tds_paid"`
	// Balance is payable when positive, refundable when negative.
	Balance       decimal.Decimal `json:"balance" yaml:"balance"`
	EffectiveRate decimal.Decimal `json:"effective_rate" yaml:"effective_rate"`

	SlabBreakdown []SlabTax                  `json:"slab_breakdown" yaml:"slab_breakdown"`
	Exemptions    map[string]decimal.Decimal `json:"exemptions_used" yaml:"exemptions_used"`
	Deductions    map[string]decimal.Decimal `json:"deductions_used" yaml:"deductions_used"`

	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Recommendation compares the two regimes' liabilities. Computed per
// request, never stored.
type Recommendation struct {
	Regime        Regime          `json:"regime" yaml:"regime"`
	Saving        decimal.Decimal `json:"saving" yaml:"saving"`
	SavingPercent decimal.Decimal `json:"saving_percent" yaml:"saving_percent"`
}

// Assessment is the orchestration API's reply: one result per requested
// regime plus, when both were computed, a recommendation.
type Assessment struct {
	Year           AssessmentYear        `json:"assessment_year" yaml:"assessment_year"`
	Results        map[Regime]*TaxResult `json:"results" yaml:"results"`
	Recommendation *Recommendation       `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Warnings       []Warning             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
