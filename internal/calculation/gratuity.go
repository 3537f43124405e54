package calculation

import "github.com/shopspring/decimal"

// EmploymentCategory drives the gratuity exemption branch.
type EmploymentCategory string

const (
	// EmploymentGovernment employees are fully exempt.
	EmploymentGovernment EmploymentCategory = "government"
	// EmploymentCovered means private sector covered under the Payment of
	// Gratuity Act 1972: 15/26 of last drawn salary per year of service.
	EmploymentCovered EmploymentCategory = "covered"
	// EmploymentUncovered means private sector outside the Act: half a
	// month's salary (15/30) per year of service.
	EmploymentUncovered EmploymentCategory = "uncovered"
)

// gratuityCeiling is the statutory exemption ceiling (Rs. 20 lakh since
// AY 2020-21, which covers every year this engine ships rules for).
var gratuityCeiling = decimal.NewFromInt(2000000)

// GratuityClaim is the input slice for the gratuity exemption.
type GratuityClaim struct {
	Received        decimal.Decimal
	LastDrawnSalary decimal.Decimal // last drawn basic + DA
	YearsOfService  decimal.Decimal // may be fractional
	Category        EmploymentCategory
}

// GratuityResult is the exemption with its audit-trail figures.
type GratuityResult struct {
	Exempt        decimal.Decimal `json:"exempt"`
	Taxable       decimal.Decimal `json:"taxable"`
	FormulaAmount decimal.Decimal `json:"formula_amount"`
	Ceiling       decimal.Decimal `json:"ceiling"`
	Method        string          `json:"method"`
}

// ComputeGratuityExemption branches on employment category: government
// gratuity is fully exempt; otherwise the exemption is the least of the
// statutory formula, the amount received, and the ceiling.
func ComputeGratuityExemption(c GratuityClaim) GratuityResult {
	if c.Category == EmploymentGovernment {
		return GratuityResult{
			Exempt:        c.Received,
			Taxable:       decimal.Zero,
			FormulaAmount: c.Received,
			Ceiling:       gratuityCeiling,
			Method:        "government employee, fully exempt",
		}
	}

	// 15/26 for employees covered under the Act, 15/30 otherwise.
	numerator, denominator := decimal.NewFromInt(15), decimal.NewFromInt(26)
	method := "covered: 15/26 x last drawn salary x service years"
	if c.Category == EmploymentUncovered {
		denominator = decimal.NewFromInt(30)
		method = "uncovered: 15/30 x last drawn salary x service years"
	}
	formula := c.LastDrawnSalary.Mul(numerator).Div(denominator).Mul(c.YearsOfService)

	exempt := decimal.Min(formula, c.Received, gratuityCeiling)
	if exempt.LessThan(decimal.Zero) {
		exempt = decimal.Zero
	}
	taxable := c.Received.Sub(exempt)
	if taxable.LessThan(decimal.Zero) {
		taxable = decimal.Zero
	}

	return GratuityResult{
		Exempt:        exempt,
		Taxable:       taxable,
		FormulaAmount: formula,
		Ceiling:       gratuityCeiling,
		Method:        method,
	}
}
