package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// professionalTaxCap is the constitutional ceiling on professional tax
// for a year (Article 276).
var professionalTaxCap = decimal.NewFromInt(2500)

// professionalTaxByState holds typical annual professional tax for the
// highest salary bracket, keyed by normalized state name. States without
// a levy are simply absent.
var professionalTaxByState = map[string]decimal.Decimal{
	"andhra pradesh": decimal.NewFromInt(2400),
	"assam":          decimal.NewFromInt(2500),
	"bihar":          decimal.NewFromInt(2500),
	"gujarat":        decimal.NewFromInt(2400),
	"jharkhand":      decimal.NewFromInt(2500),
	"karnataka":      decimal.NewFromInt(2400),
	"kerala":         decimal.NewFromInt(2500),
	"madhya pradesh": decimal.NewFromInt(2500),
	"maharashtra":    decimal.NewFromInt(2500),
	"meghalaya":      decimal.NewFromInt(2500),
	"odisha":         decimal.NewFromInt(2400),
	"punjab":         decimal.NewFromInt(2400),
	"sikkim":         decimal.NewFromInt(2400),
	"tamil nadu":     decimal.NewFromInt(2500),
	"telangana":      decimal.NewFromInt(2400),
	"tripura":        decimal.NewFromInt(2496),
	"west bengal":    decimal.NewFromInt(2400),
}

// ProfessionalTaxFor returns the annual professional tax deduction for a
// state of residence, capped at the constitutional ceiling. States not in
// the table return zero, not an error.
func ProfessionalTaxFor(state string) decimal.Decimal {
	key := strings.ToLower(strings.Join(strings.Fields(state), " "))
	amount, ok := professionalTaxByState[key]
	if !ok {
		return decimal.Zero
	}
	return decimal.Min(amount, professionalTaxCap)
}
