package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

var (
	hraMetroRate    = decimal.NewFromFloat(0.50)
	hraNonMetroRate = decimal.NewFromFloat(0.40)
	tenPercent      = decimal.NewFromFloat(0.10)
	twelve          = decimal.NewFromInt(12)
)

// HRAInput is the narrow input slice for the rent exemption.
type HRAInput struct {
	Received    decimal.Decimal // HRA component of salary for the year
	BasicPlusDA decimal.Decimal // basic salary plus DA forming part of retirement benefits
	RentPaid    decimal.Decimal // rent actually paid over the rented months
	City        domain.CityCategory
	// MonthsRented prorates the claim when the taxpayer was not in rented
	// accommodation the whole year. Zero means the full twelve months.
	MonthsRented int
}

// HRAResult is the least-of-three breakdown for the audit trail.
type HRAResult struct {
	Exempt         decimal.Decimal `json:"exempt"`
	Taxable        decimal.Decimal `json:"taxable"`
	ActualReceived decimal.Decimal `json:"actual_received"`
	RentOverTenPct decimal.Decimal `json:"rent_minus_10pct_basic"`
	CityPctOfBasic decimal.Decimal `json:"city_pct_of_basic"`
	LimitingFactor string          `json:"limiting_factor"`
}

// ComputeHRAExemption applies the Section 10(13A) least-of-three rule:
// actual allowance received, rent paid less 10% of basic+DA, and 50%
// (metro) or 40% (non-metro) of basic+DA. Floored at zero.
func ComputeHRAExemption(in HRAInput) HRAResult {
	months := decimal.NewFromInt(int64(in.MonthsRented))
	if in.MonthsRented <= 0 || in.MonthsRented > 12 {
		months = twelve
	}
	factor := months.Div(twelve)

	actual := in.Received.Mul(factor)

	rentOverTenPct := in.RentPaid.Sub(in.BasicPlusDA.Mul(factor).Mul(tenPercent))
	if rentOverTenPct.LessThan(decimal.Zero) {
		rentOverTenPct = decimal.Zero
	}

	rate := hraNonMetroRate
	if in.City == domain.CityMetro {
		rate = hraMetroRate
	}
	cityPct := in.BasicPlusDA.Mul(rate).Mul(factor)

	exempt := decimal.Min(actual, rentOverTenPct, cityPct)
	limiting := "actual_received"
	switch {
	case exempt.Equal(rentOverTenPct) && !exempt.Equal(actual):
		limiting = "rent_minus_10pct_basic"
	case exempt.Equal(cityPct) && !exempt.Equal(actual):
		limiting = "city_pct_of_basic"
	}

	taxable := in.Received.Sub(exempt)
	if taxable.LessThan(decimal.Zero) {
		taxable = decimal.Zero
	}

	return HRAResult{
		Exempt:         exempt,
		Taxable:        taxable,
		ActualReceived: actual,
		RentOverTenPct: rentOverTenPct,
		CityPctOfBasic: cityPct,
		LimitingFactor: limiting,
	}
}
