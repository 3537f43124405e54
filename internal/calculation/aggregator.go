package calculation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// ComponentInputs carries the optional supporting figures that do not
// appear on an employer record: rent actually paid, travel claims,
// retirement payouts, perquisite detail, and non-salary income. All
// fields are optional; a zero value simply skips the component.
type ComponentInputs struct {
	RentPaid     decimal.Decimal     `yaml:"rent_paid" json:"rent_paid"`
	MonthsRented int                 `yaml:"months_rented" json:"months_rented"`
	City         domain.CityCategory `yaml:"city" json:"city"`

	LTA         *LTAClaim          `yaml:"lta,omitempty" json:"lta,omitempty"`
	Gratuity    *GratuityClaim     `yaml:"gratuity,omitempty" json:"gratuity,omitempty"`
	Perquisites *PerquisiteDetails `yaml:"perquisites,omitempty" json:"perquisites,omitempty"`

	// StateOfResidence resolves professional tax when the record does
	// not carry an employer-deducted figure.
	StateOfResidence string `yaml:"state_of_residence" json:"state_of_residence"`

	Other domain.OtherIncome `yaml:"other_income" json:"other_income"`
}

// Aggregator normalizes an employer record plus component inputs into
// the canonical input for one regime. It is the only place the regime
// allow-lists and section caps are applied; the engine downstream
// never branches on regime.
type Aggregator struct {
	rules *domain.RuleSet
}

// NewAggregator returns an aggregator bound to one year/regime rule set.
func NewAggregator(rs *domain.RuleSet) *Aggregator {
	return &Aggregator{rules: rs}
}

// Build produces the canonical tax input for the aggregator's regime.
// Disallowed claims are dropped with a warning rather than an error, and
// over-limit sections are trimmed to their caps. The record itself is
// never mutated.
func (a *Aggregator) Build(record *domain.IncomeRecord, age domain.AgeCategory, in ComponentInputs) *domain.CanonicalTaxInput {
	input := &domain.CanonicalTaxInput{
		Year:       a.rules.Year,
		Regime:     a.rules.Regime,
		Age:        age,
		City:       in.City,
		TDSPaid:    record.TDSDeducted,
		Exemptions: map[string]decimal.Decimal{},
		Deductions: map[string]decimal.Decimal{},
	}
	if !input.City.Valid() {
		input.City = domain.CityNonMetro
	}

	input.GrossSalary = a.grossSalary(record, in)
	input.OtherIncome = in.Other.Total()

	a.admitExemptions(record, in, input)
	a.admitDeductions(record, input)
	a.admitProfessionalTax(record, in, input)

	// Standard deduction cannot exceed the salary it is deducted from.
	input.StandardDeduction = decimal.Min(input.GrossSalary, a.rules.StandardDeduction)

	return input
}

// grossSalary folds the Section 17 heads together. When perquisite
// detail is supplied the computed valuation replaces the record's
// lump-sum perquisite figure, since the detail is the more precise
// statement of the same benefit.
func (a *Aggregator) grossSalary(record *domain.IncomeRecord, in ComponentInputs) decimal.Decimal {
	if in.Perquisites == nil {
		return record.GrossSalary()
	}
	valuation := ValuePerquisites(basicPlusDA(record), *in.Perquisites)
	return record.SalaryIncome.Add(valuation.Total).Add(record.ProfitsInLieu)
}

func basicPlusDA(record *domain.IncomeRecord) decimal.Decimal {
	return record.BasicSalary.Add(record.DearnessAllowance)
}

// admitExemptions applies the Section 10 allow-list. HRA and LTA are
// recomputed from their component inputs when those are present,
// overriding whatever figure the record claimed.
func (a *Aggregator) admitExemptions(record *domain.IncomeRecord, in ComponentInputs, input *domain.CanonicalTaxInput) {
	claims := map[string]decimal.Decimal{}
	for key, amount := range record.Exemptions {
		if amount.IsPositive() {
			claims[key] = amount
		}
	}

	if record.HRAReceived.IsPositive() && in.RentPaid.IsPositive() {
		hra := ComputeHRAExemption(HRAInput{
			Received:     record.HRAReceived,
			BasicPlusDA:  basicPlusDA(record),
			RentPaid:     in.RentPaid,
			City:         input.City,
			MonthsRented: in.MonthsRented,
		})
		claims[domain.ExemptionHRA] = hra.Exempt
	}
	if in.LTA != nil {
		claim := *in.LTA
		if claim.AllowanceReceived.IsZero() {
			claim.AllowanceReceived = record.LTAReceived
		}
		lta := ComputeLTAExemption(claim)
		claims[domain.ExemptionLTA] = lta.Exempt
		if lta.Warning != nil && a.rules.AllowsExemption(domain.ExemptionLTA) {
			input.Warnings = append(input.Warnings, *lta.Warning)
		}
	}
	if in.Gratuity != nil {
		claims[domain.ExemptionGratuity] = ComputeGratuityExemption(*in.Gratuity).Exempt
	}

	for _, key := range sortedKeys(claims) {
		amount := claims[key]
		if !a.rules.AllowsExemption(key) {
			if amount.IsPositive() {
				input.Warnings = append(input.Warnings, domain.Warning{
					Code:    domain.WarnDisallowedClaim,
					Message: fmt.Sprintf("exemption %q is not available under the %s regime; claim of %s dropped", key, a.rules.Regime, amount.StringFixed(0)),
				})
			}
			continue
		}
		if amount.IsPositive() {
			input.Exemptions[key] = amount
		}
	}
}

// admitDeductions applies the Chapter VI-A allow-list, per-section caps,
// and the Section 80CCE umbrella that limits 80C, 80CCC and 80CCD(1)
// together to the 80C ceiling.
func (a *Aggregator) admitDeductions(record *domain.IncomeRecord, input *domain.CanonicalTaxInput) {
	for _, key := range sortedKeys(record.Deductions) {
		amount := record.Deductions[key]
		if !amount.IsPositive() {
			continue
		}
		if !a.rules.AllowsDeduction(key) {
			input.Warnings = append(input.Warnings, domain.Warning{
				Code:    domain.WarnDisallowedClaim,
				Message: fmt.Sprintf("deduction %q is not available under the %s regime; claim of %s dropped", key, a.rules.Regime, amount.StringFixed(0)),
			})
			continue
		}
		if limit := a.rules.DeductionLimit(key); limit.IsPositive() && amount.GreaterThan(limit) {
			input.Warnings = append(input.Warnings, domain.Warning{
				Code:    domain.WarnOverLimitDeduction,
				Message: fmt.Sprintf("section %s claim of %s exceeds the %s limit; trimmed", key, amount.StringFixed(0), limit.StringFixed(0)),
			})
			amount = limit
		}
		input.Deductions[key] = amount
	}

	a.applyCombinedCap(input)
}

// applyCombinedCap trims the 80CCE umbrella. Excess comes off 80CCD(1)
// first, then 80CCC, then 80C, so the headline 80C figure survives
// where possible.
func (a *Aggregator) applyCombinedCap(input *domain.CanonicalTaxInput) {
	limit := a.rules.DeductionLimit(domain.Section80C)
	if !limit.IsPositive() {
		return
	}
	umbrella := []string{domain.Section80C, domain.Section80CCC, domain.Section80CCD1}
	combined := decimal.Zero
	for _, key := range umbrella {
		combined = combined.Add(input.Deductions[key])
	}
	if combined.LessThanOrEqual(limit) {
		return
	}

	input.Warnings = append(input.Warnings, domain.Warning{
		Code:    domain.WarnOverLimitDeduction,
		Message: fmt.Sprintf("combined 80C/80CCC/80CCD(1) claims of %s exceed the %s ceiling; trimmed", combined.StringFixed(0), limit.StringFixed(0)),
	})
	excess := combined.Sub(limit)
	for i := len(umbrella) - 1; i >= 0 && excess.IsPositive(); i-- {
		key := umbrella[i]
		have := input.Deductions[key]
		cut := decimal.Min(have, excess)
		excess = excess.Sub(cut)
		remaining := have.Sub(cut)
		if remaining.IsPositive() {
			input.Deductions[key] = remaining
		} else {
			delete(input.Deductions, key)
		}
	}
}

// admitProfessionalTax prefers the employer-deducted figure and falls
// back to the state schedule, always bounded by the Article 276 cap.
func (a *Aggregator) admitProfessionalTax(record *domain.IncomeRecord, in ComponentInputs, input *domain.CanonicalTaxInput) {
	amount := record.ProfessionalTax
	if amount.IsZero() && in.StateOfResidence != "" {
		amount = ProfessionalTaxFor(in.StateOfResidence)
	}
	if !amount.IsPositive() {
		return
	}
	if amount.GreaterThan(professionalTaxCap) {
		amount = professionalTaxCap
	}
	if !a.rules.AllowsDeduction(domain.DeductionProfessionalTax) {
		input.Warnings = append(input.Warnings, domain.Warning{
			Code:    domain.WarnDisallowedClaim,
			Message: fmt.Sprintf("professional tax of %s is not deductible under the %s regime", amount.StringFixed(0), a.rules.Regime),
		})
		return
	}
	input.ProfessionalTax = amount
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
