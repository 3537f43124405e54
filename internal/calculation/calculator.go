package calculation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// RuleProvider is the full rule surface the orchestrating calculator
// needs; RuleSource covers the per-regime calculators.
type RuleProvider interface {
	RuleSource
	AvailableRegimes(year domain.AssessmentYear) ([]domain.Regime, error)
}

// Request describes one calculation: whose income, which year, which
// regimes, and the optional component inputs. Exactly one of Record or
// Consolidated must be set.
type Request struct {
	Year domain.AssessmentYear `yaml:"assessment_year" json:"assessment_year"`

	// Regimes to compute. Empty means every regime the year offers,
	// which also enables the recommendation.
	Regimes []domain.Regime    `yaml:"regimes" json:"regimes"`
	Age     domain.AgeCategory `yaml:"age_category" json:"age_category"`

	Record       *domain.IncomeRecord             `yaml:"record,omitempty" json:"record,omitempty"`
	Consolidated *domain.ConsolidatedIncomeRecord `yaml:"consolidated,omitempty" json:"consolidated,omitempty"`

	Components ComponentInputs `yaml:"components" json:"components"`
	Arrears    []ArrearSlice   `yaml:"arrears,omitempty" json:"arrears,omitempty"`
}

// Calculator is the orchestration entry point: it resolves rules,
// aggregates income per regime, runs the engine, folds in arrears
// relief and produces the assessment. Stateless; safe for concurrent
// use.
type Calculator struct {
	Rules   RuleProvider
	Arrears *ArrearsCalculator
	Logger  Logger
}

// NewCalculator creates a calculator over a rule provider.
func NewCalculator(rules RuleProvider) *Calculator {
	return &Calculator{
		Rules:   rules,
		Arrears: NewArrearsCalculator(rules),
		Logger:  NopLogger{},
	}
}

// SetLogger replaces the calculator's logger; nil restores the no-op.
func (c *Calculator) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	c.Logger = l
}

// Calculate runs the full pipeline for every requested regime. Regime
// unavailability and unsupported years surface as typed errors; data
// quality findings ride on the results as warnings.
func (c *Calculator) Calculate(ctx context.Context, req *Request) (*domain.Assessment, error) {
	record, baseWarnings, err := c.resolveRecord(req)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	year := req.Year
	if year == "" {
		year, err = domain.FinancialYearFor(record.FinancialYear)
		if err != nil {
			return nil, err
		}
	}
	if !year.Valid() {
		return nil, &domain.InvalidInputError{Field: "assessment_year", Reason: "expected YYYY-YY, got " + string(year)}
	}

	age := req.Age
	if age == "" {
		age = domain.AgeBelow60
	}

	regimes := req.Regimes
	if len(regimes) == 0 {
		regimes, err = c.Rules.AvailableRegimes(year)
		if err != nil {
			return nil, err
		}
	}

	assessment := &domain.Assessment{
		Year:     year,
		Results:  make(map[domain.Regime]*domain.TaxResult, len(regimes)),
		Warnings: baseWarnings,
	}
	for _, regime := range regimes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := c.calculateRegime(year, regime, age, record, req)
		if err != nil {
			return nil, err
		}
		c.Logger.Infof("%s %s regime: taxable %s, liability %s",
			year, regime, result.TaxableIncome.StringFixed(0), result.TotalLiability.StringFixed(0))
		assessment.Results[regime] = result
	}

	if rec, err := c.recommend(year, assessment.Results); err != nil {
		return nil, err
	} else if rec != nil {
		assessment.Recommendation = rec
	}
	return assessment, nil
}

func (c *Calculator) resolveRecord(req *Request) (*domain.IncomeRecord, []domain.Warning, error) {
	switch {
	case req.Record != nil && req.Consolidated != nil:
		return nil, nil, &domain.InvalidInputError{Field: "record", Reason: "set either record or consolidated, not both"}
	case req.Consolidated != nil:
		return &req.Consolidated.IncomeRecord, req.Consolidated.Warnings, nil
	case req.Record != nil:
		return req.Record, nil, nil
	default:
		return nil, nil, &domain.InvalidInputError{Field: "record", Reason: "no income record supplied"}
	}
}

func (c *Calculator) calculateRegime(
	year domain.AssessmentYear,
	regime domain.Regime,
	age domain.AgeCategory,
	record *domain.IncomeRecord,
	req *Request,
) (*domain.TaxResult, error) {
	rs, err := c.Rules.RulesFor(year, regime)
	if err != nil {
		return nil, err
	}

	input := NewAggregator(rs).Build(record, age, req.Components)
	taxable := input.TaxableIncome()
	comp := NewRegimeEngine(rs).Compute(taxable, age)
	c.Logger.Debugf("%s %s regime: gross %s, exemptions %s, deductions %s",
		year, regime, input.GrossSalary.StringFixed(0),
		input.ExemptionTotal().StringFixed(0), input.DeductionTotal().StringFixed(0))

	relief := decimal.Zero
	if len(req.Arrears) > 0 {
		spread, err := c.Arrears.Relief(year, regime, age, taxable, req.Arrears)
		if err != nil {
			return nil, err
		}
		relief = spread.Relief
	}
	total := comp.TotalLiability.Sub(relief)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	result := &domain.TaxResult{
		Year:              year,
		Regime:            regime,
		GrossSalary:       input.GrossSalary,
		TaxableIncome:     taxable,
		StandardDeduction: input.StandardDeduction,
		TaxBeforeRebate:   comp.TaxBeforeRebate,
		Rebate:            comp.Rebate,
		Surcharge:         comp.Surcharge,
		MarginalRelief:    comp.MarginalRelief,
		Cess:              comp.Cess,
		Section89Relief:   relief,
		TotalLiability:    total,
		TDSPaid:           input.TDSPaid,
		Balance:           total.Sub(input.TDSPaid),
		SlabBreakdown:     comp.SlabBreakdown,
		Exemptions:        input.Exemptions,
		Deductions:        input.Deductions,
		Warnings:          input.Warnings,
	}
	if totalIncome := input.GrossSalary.Add(input.OtherIncome); totalIncome.IsPositive() {
		result.EffectiveRate = total.Div(totalIncome).Mul(hundred).Round(2)
	}
	return result, nil
}

// recommend compares the computed regimes and names the cheaper one.
// Ties go to the year's default regime.
func (c *Calculator) recommend(year domain.AssessmentYear, results map[domain.Regime]*domain.TaxResult) (*domain.Recommendation, error) {
	if len(results) < 2 {
		return nil, nil
	}
	oldRes, okOld := results[domain.RegimeOld]
	newRes, okNew := results[domain.RegimeNew]
	if !okOld || !okNew {
		return nil, nil
	}

	best, worst := newRes, oldRes
	if oldRes.TotalLiability.LessThan(newRes.TotalLiability) {
		best, worst = oldRes, newRes
	} else if oldRes.TotalLiability.Equal(newRes.TotalLiability) {
		def, err := c.Rules.DefaultRegime(year)
		if err != nil {
			return nil, err
		}
		if def == domain.RegimeOld {
			best, worst = oldRes, newRes
		}
	}

	rec := &domain.Recommendation{
		Regime: best.Regime,
		Saving: worst.TotalLiability.Sub(best.TotalLiability),
	}
	if worst.TotalLiability.IsPositive() {
		rec.SavingPercent = rec.Saving.Div(worst.TotalLiability).Mul(hundred).Round(2)
	}
	return rec, nil
}
