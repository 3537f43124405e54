package calculation

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// RuleSource is the slice of the rule provider the calculators need.
type RuleSource interface {
	RulesFor(year domain.AssessmentYear, regime domain.Regime) (*domain.RuleSet, error)
	DefaultRegime(year domain.AssessmentYear) (domain.Regime, error)
}

// ArrearSlice allocates a portion of arrears received this year to the
// prior year it relates to. PriorTaxableIncome is the taxable income
// originally assessed for that year, before the arrear.
type ArrearSlice struct {
	Year               domain.AssessmentYear `yaml:"assessment_year" json:"assessment_year"`
	Amount             decimal.Decimal       `yaml:"amount" json:"amount"`
	PriorTaxableIncome decimal.Decimal       `yaml:"prior_taxable_income" json:"prior_taxable_income"`
}

// ArrearYearDelta is one prior year's recomputation in the spread-back.
type ArrearYearDelta struct {
	Year          domain.AssessmentYear `json:"assessment_year"`
	Amount        decimal.Decimal       `json:"amount"`
	TaxWithout    decimal.Decimal       `json:"tax_without_arrear"`
	TaxWith       decimal.Decimal       `json:"tax_with_arrear"`
	AdditionalTax decimal.Decimal       `json:"additional_tax"`
}

// ArrearsRelief is the Section 89(1) computation result, carrying the
// Form 10E figures as data.
type ArrearsRelief struct {
	TotalArrears          decimal.Decimal   `json:"total_arrears"`
	CurrentTaxWithArrears decimal.Decimal   `json:"current_tax_with_arrears"`
	CurrentTaxWithout     decimal.Decimal   `json:"current_tax_without_arrears"`
	Breakdown             []ArrearYearDelta `json:"breakdown"`
	Relief                decimal.Decimal   `json:"relief"`
}

// ArrearsCalculator spreads salary arrears back over the years they
// relate to, recomputing each year under its own rule set.
type ArrearsCalculator struct {
	Rules RuleSource
}

// NewArrearsCalculator creates a calculator over a rule source.
func NewArrearsCalculator(rules RuleSource) *ArrearsCalculator {
	return &ArrearsCalculator{Rules: rules}
}

// Relief computes Section 89(1) relief for arrears already included in
// currentTaxable: the extra tax the arrears cause this year, less the
// extra tax they would have caused in their own years. Never negative.
func (ac *ArrearsCalculator) Relief(
	year domain.AssessmentYear,
	regime domain.Regime,
	age domain.AgeCategory,
	currentTaxable decimal.Decimal,
	slices []ArrearSlice,
) (*ArrearsRelief, error) {
	if len(slices) == 0 {
		return &ArrearsRelief{}, nil
	}

	total := decimal.Zero
	for _, s := range slices {
		if s.Amount.LessThan(decimal.Zero) {
			return nil, &domain.InvalidInputError{Field: "arrears", Reason: "arrear amount cannot be negative"}
		}
		if !s.Year.Valid() {
			return nil, &domain.InvalidInputError{Field: "arrears", Reason: "malformed arrear assessment year"}
		}
		total = total.Add(s.Amount)
	}

	currentRules, err := ac.Rules.RulesFor(year, regime)
	if err != nil {
		return nil, err
	}
	currentEngine := NewRegimeEngine(currentRules)
	withArrears := currentEngine.Compute(currentTaxable, age).TotalLiability
	withoutArrears := currentEngine.Compute(currentTaxable.Sub(total), age).TotalLiability

	relief := &ArrearsRelief{
		TotalArrears:          total,
		CurrentTaxWithArrears: withArrears,
		CurrentTaxWithout:     withoutArrears,
	}

	priorAdditional := decimal.Zero
	for _, s := range slices {
		priorEngine, err := ac.engineForPriorYear(s.Year, regime)
		if err != nil {
			return nil, err
		}
		taxWithout := priorEngine.Compute(s.PriorTaxableIncome, age).TotalLiability
		taxWith := priorEngine.Compute(s.PriorTaxableIncome.Add(s.Amount), age).TotalLiability
		additional := taxWith.Sub(taxWithout)
		priorAdditional = priorAdditional.Add(additional)
		relief.Breakdown = append(relief.Breakdown, ArrearYearDelta{
			Year:          s.Year,
			Amount:        s.Amount,
			TaxWithout:    taxWithout,
			TaxWith:       taxWith,
			AdditionalTax: additional,
		})
	}

	amount := withArrears.Sub(withoutArrears).Sub(priorAdditional)
	if amount.LessThan(decimal.Zero) {
		amount = decimal.Zero
	}
	relief.Relief = amount
	return relief, nil
}

// engineForPriorYear resolves the prior year's rule set under the
// requested regime, falling back to the year's default regime when the
// requested one did not exist then (e.g. the simplified regime before
// its introduction).
func (ac *ArrearsCalculator) engineForPriorYear(year domain.AssessmentYear, regime domain.Regime) (*RegimeEngine, error) {
	rs, err := ac.Rules.RulesFor(year, regime)
	if err == nil {
		return NewRegimeEngine(rs), nil
	}
	var unavailable *domain.RegimeUnavailableError
	if !errors.As(err, &unavailable) {
		return nil, err
	}
	fallback, err := ac.Rules.DefaultRegime(year)
	if err != nil {
		return nil, err
	}
	rs, err = ac.Rules.RulesFor(year, fallback)
	if err != nil {
		return nil, err
	}
	return NewRegimeEngine(rs), nil
}
