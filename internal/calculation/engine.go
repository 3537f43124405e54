package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// TaxComputation carries every intermediate figure of one regime engine
// pass over a taxable income.
type TaxComputation struct {
	TaxableIncome   decimal.Decimal
	SlabBreakdown   []domain.SlabTax
	TaxBeforeRebate decimal.Decimal
	Rebate          decimal.Decimal
	Surcharge       decimal.Decimal
	MarginalRelief  bool
	Cess            decimal.Decimal
	TotalLiability  decimal.Decimal
}

// RegimeEngine applies one rule set's slabs, rebate, surcharge and cess to
// a taxable income figure. It holds no mutable state; one engine per rule
// set may serve concurrent calls.
type RegimeEngine struct {
	Rules *domain.RuleSet
}

// NewRegimeEngine creates an engine bound to a rule set.
func NewRegimeEngine(rs *domain.RuleSet) *RegimeEngine {
	return &RegimeEngine{Rules: rs}
}

// Compute runs the four statutory steps in order: slab tax, Section 87A
// rebate, surcharge with marginal relief, then cess on the post-rebate,
// post-surcharge figure. Negative income clamps to zero.
func (e *RegimeEngine) Compute(taxableIncome decimal.Decimal, age domain.AgeCategory) *TaxComputation {
	if taxableIncome.LessThan(decimal.Zero) {
		taxableIncome = decimal.Zero
	}
	slabs := e.Rules.SlabsFor(age)

	breakdown, taxBeforeRebate := slabTax(slabs, taxableIncome)

	// Rebate cliff: at the threshold the rebate still applies; one rupee
	// above it, it does not.
	rebate := decimal.Zero
	if taxableIncome.LessThanOrEqual(e.Rules.RebateThreshold) {
		rebate = decimal.Min(taxBeforeRebate, e.Rules.RebateCap)
	}

	surcharge, relieved := e.surcharge(taxBeforeRebate, taxableIncome, slabs)

	// Cess applies after rebate and surcharge, never before.
	cessBase := taxBeforeRebate.Sub(rebate).Add(surcharge)
	cess := cessBase.Mul(e.Rules.CessRate)

	total := cessBase.Add(cess).Round(0)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	return &TaxComputation{
		TaxableIncome:   taxableIncome,
		SlabBreakdown:   breakdown,
		TaxBeforeRebate: taxBeforeRebate,
		Rebate:          rebate,
		Surcharge:       surcharge,
		MarginalRelief:  relieved,
		Cess:            cess,
		TotalLiability:  total,
	}
}

// surcharge finds the highest band whose threshold is at or below the
// income and caps the levy with marginal relief against that band's own
// threshold: crossing a boundary can never raise total tax by more than
// the income that crossed it.
func (e *RegimeEngine) surcharge(taxBeforeRebate, taxableIncome decimal.Decimal, slabs []domain.Slab) (decimal.Decimal, bool) {
	var band *domain.SurchargeBand
	for i := range e.Rules.SurchargeBands {
		if taxableIncome.GreaterThan(e.Rules.SurchargeBands[i].Threshold) {
			band = &e.Rules.SurchargeBands[i]
		}
	}
	if band == nil {
		return decimal.Zero, false
	}

	surcharge := taxBeforeRebate.Mul(band.Rate)

	_, taxAtThreshold := slabTax(slabs, band.Threshold)
	surchargeAtThreshold := decimal.Zero
	for i := range e.Rules.SurchargeBands {
		b := e.Rules.SurchargeBands[i]
		if band.Threshold.GreaterThan(b.Threshold) {
			surchargeAtThreshold = taxAtThreshold.Mul(b.Rate)
		}
	}
	excessIncome := taxableIncome.Sub(band.Threshold)
	maxTotal := taxAtThreshold.Add(surchargeAtThreshold).Add(excessIncome)

	if taxBeforeRebate.Add(surcharge).GreaterThan(maxTotal) {
		relieved := maxTotal.Sub(taxBeforeRebate)
		if relieved.LessThan(decimal.Zero) {
			relieved = decimal.Zero
		}
		return relieved, true
	}
	return surcharge, false
}

// slabTax walks the ordered slab table and returns the per-slab breakdown
// and the summed tax. Slabs are half-open [lower, upper) except the last,
// which is unbounded above.
func slabTax(slabs []domain.Slab, income decimal.Decimal) ([]domain.SlabTax, decimal.Decimal) {
	var breakdown []domain.SlabTax
	total := decimal.Zero
	remaining := income

	for _, slab := range slabs {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		taxable := remaining
		if slab.Upper != nil {
			width := slab.Upper.Sub(slab.Lower)
			taxable = decimal.Min(remaining, width)
		}
		tax := taxable.Mul(slab.Rate)
		breakdown = append(breakdown, domain.SlabTax{
			Lower:   slab.Lower,
			Upper:   slab.Upper,
			Rate:    slab.Rate,
			Taxable: taxable,
			Tax:     tax,
		})
		total = total.Add(tax)
		remaining = remaining.Sub(taxable)
	}
	return breakdown, total
}
