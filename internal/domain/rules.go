package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Regime selects one of the two statutory computation modes.
type Regime string

const (
	// RegimeOld is the legacy regime with the full deduction/exemption set.
	RegimeOld Regime = "old"
	// RegimeNew is the simplified regime (Section 115BAC): lower rates,
	// restricted deductions. Did not exist before AY 2021-22.
	RegimeNew Regime = "new"
)

// Valid reports whether r names a known regime.
func (r Regime) Valid() bool {
	return r == RegimeOld || r == RegimeNew
}

// AgeCategory selects the slab table for the old regime, which grants a
// higher basic exemption to seniors.
type AgeCategory string

const (
	AgeBelow60     AgeCategory = "below_60"
	AgeSenior      AgeCategory = "senior"       // 60 to 79
	AgeSuperSenior AgeCategory = "super_senior" // 80 and above
)

// Valid reports whether a names a known age category.
func (a AgeCategory) Valid() bool {
	switch a {
	case AgeBelow60, AgeSenior, AgeSuperSenior:
		return true
	}
	return false
}

// Slab is one contiguous income range taxed at a single rate. Upper is nil
// for the topmost, unbounded slab. Ranges are half-open: [Lower, Upper).
type Slab struct {
	Lower decimal.Decimal  `yaml:"from" json:"from"`
	Upper *decimal.Decimal `yaml:"to" json:"to"`
	Rate  decimal.Decimal  `yaml:"rate" json:"rate"`
}

// Contains reports whether income falls inside the slab's range.
func (s Slab) Contains(income decimal.Decimal) bool {
	if income.LessThan(s.Lower) {
		return false
	}
	return s.Upper == nil || income.LessThan(*s.Upper)
}

// SurchargeBand is one surcharge step: the rate applies to the slab tax of
// incomes at or above Threshold, until a higher band takes over.
type SurchargeBand struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// RuleSet carries every statutory parameter for one (assessment year, regime)
// pair. It is built once at load time and never mutated.
type RuleSet struct {
	Year   AssessmentYear `yaml:"assessment_year" json:"assessment_year"`
	Regime Regime         `yaml:"regime" json:"regime"`

	// Slabs keyed by age category. The new regime carries a single
	// below_60 table that applies to all ages.
	Slabs map[AgeCategory][]Slab `yaml:"tax_slabs" json:"tax_slabs"`

	RebateThreshold   decimal.Decimal `yaml:"rebate_threshold" json:"rebate_threshold"`
	RebateCap         decimal.Decimal `yaml:"rebate_cap" json:"rebate_cap"`
	SurchargeBands    []SurchargeBand `yaml:"surcharge_bands" json:"surcharge_bands"`
	CessRate          decimal.Decimal `yaml:"cess_rate" json:"cess_rate"`
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`

	// Allow-lists consulted by the income aggregator; the engine itself
	// never branches on regime.
	AllowedDeductions []string                   `yaml:"allowed_deductions" json:"allowed_deductions"`
	AllowedExemptions []string                   `yaml:"allowed_exemptions" json:"allowed_exemptions"`
	DeductionLimits   map[string]decimal.Decimal `yaml:"deduction_limits" json:"deduction_limits"`

	// Default marks the regime the statute presumes when the taxpayer
	// expresses no choice.
	Default bool `yaml:"is_default" json:"is_default"`
}

// SlabsFor returns the slab table for the age category, falling back to the
// below-60 table when the regime has no age-specific slabs.
func (rs *RuleSet) SlabsFor(age AgeCategory) []Slab {
	if slabs, ok := rs.Slabs[age]; ok {
		return slabs
	}
	return rs.Slabs[AgeBelow60]
}

// DeductionLimit returns the cap for a Chapter VI-A section, zero meaning
// the section is uncapped in the rule data.
func (rs *RuleSet) DeductionLimit(section string) decimal.Decimal {
	return rs.DeductionLimits[section]
}

// AllowsDeduction reports whether the regime admits the Chapter VI-A section.
func (rs *RuleSet) AllowsDeduction(section string) bool {
	for _, s := range rs.AllowedDeductions {
		if s == section {
			return true
		}
	}
	return false
}

// AllowsExemption reports whether the regime admits the Section 10 exemption.
func (rs *RuleSet) AllowsExemption(kind string) bool {
	for _, s := range rs.AllowedExemptions {
		if s == kind {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants the engine depends on:
// a contiguous slab table from zero with non-decreasing rates per age
// category, ascending surcharge thresholds with non-decreasing rates,
// and a positive cess rate.
func (rs *RuleSet) Validate() error {
	if !rs.Year.Valid() {
		return fmt.Errorf("rule set %s/%s: malformed assessment year", rs.Year, rs.Regime)
	}
	if !rs.Regime.Valid() {
		return fmt.Errorf("rule set %s/%s: unknown regime", rs.Year, rs.Regime)
	}
	if len(rs.Slabs) == 0 {
		return fmt.Errorf("rule set %s/%s: no slab tables", rs.Year, rs.Regime)
	}
	if _, ok := rs.Slabs[AgeBelow60]; !ok {
		return fmt.Errorf("rule set %s/%s: missing below_60 slab table", rs.Year, rs.Regime)
	}
	for age, slabs := range rs.Slabs {
		if err := validateSlabs(slabs); err != nil {
			return fmt.Errorf("rule set %s/%s age %s: %w", rs.Year, rs.Regime, age, err)
		}
	}
	prevThreshold := decimal.Zero
	prevRate := decimal.Zero
	for i, band := range rs.SurchargeBands {
		if i > 0 && band.Threshold.LessThanOrEqual(prevThreshold) {
			return fmt.Errorf("rule set %s/%s: surcharge thresholds not ascending", rs.Year, rs.Regime)
		}
		if band.Rate.LessThan(prevRate) {
			return fmt.Errorf("rule set %s/%s: surcharge rates decrease at threshold %s", rs.Year, rs.Regime, band.Threshold)
		}
		prevThreshold = band.Threshold
		prevRate = band.Rate
	}
	if rs.CessRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("rule set %s/%s: cess rate must be positive", rs.Year, rs.Regime)
	}
	if rs.StandardDeduction.LessThan(decimal.Zero) {
		return fmt.Errorf("rule set %s/%s: standard deduction cannot be negative", rs.Year, rs.Regime)
	}
	if rs.RebateCap.LessThan(decimal.Zero) || rs.RebateThreshold.LessThan(decimal.Zero) {
		return fmt.Errorf("rule set %s/%s: rebate parameters cannot be negative", rs.Year, rs.Regime)
	}
	return nil
}

func validateSlabs(slabs []Slab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("empty slab table")
	}
	if !slabs[0].Lower.IsZero() {
		return fmt.Errorf("first slab must start at zero, got %s", slabs[0].Lower)
	}
	prevRate := decimal.NewFromInt(-1)
	for i, slab := range slabs {
		last := i == len(slabs)-1
		if slab.Upper == nil && !last {
			return fmt.Errorf("only the last slab may be unbounded")
		}
		if last && slab.Upper != nil {
			return fmt.Errorf("last slab must be unbounded")
		}
		if slab.Upper != nil && slab.Upper.LessThanOrEqual(slab.Lower) {
			return fmt.Errorf("slab %d has non-positive width", i)
		}
		if i > 0 && !slab.Lower.Equal(*slabs[i-1].Upper) {
			return fmt.Errorf("gap or overlap between slab %d and %d", i-1, i)
		}
		if slab.Rate.LessThan(prevRate) {
			return fmt.Errorf("slab rates decrease at slab %d", i)
		}
		if slab.Rate.LessThan(decimal.Zero) || slab.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("slab %d rate %s outside [0,1]", i, slab.Rate)
		}
		prevRate = slab.Rate
	}
	return nil
}
