package calculation

import "github.com/shopspring/decimal"

// Perquisite valuation per Income Tax Rule 3: each benefit type is valued
// independently and the total feeds back into gross salary.

var (
	accomMetroRate    = decimal.NewFromFloat(0.15)
	accomNonMetroRate = decimal.NewFromFloat(0.10)
	accomFurnished    = decimal.NewFromFloat(0.05)

	carSmallMonthly  = decimal.NewFromInt(1800) // engine up to 1600 cc
	carLargeMonthly  = decimal.NewFromInt(2700)
	fuelSmallMonthly = decimal.NewFromInt(1200)
	fuelLargeMonthly = decimal.NewFromInt(1800)
	driverMonthly    = decimal.NewFromInt(1200)

	loanExemptSlice = decimal.NewFromInt(20000)
	hundred         = decimal.NewFromInt(100)
)

// AccommodationPerk describes employer-provided housing.
type AccommodationPerk struct {
	// MetroCity selects the higher percentage tier (population-class
	// proxy used by the valuation rule).
	MetroCity bool
	Furnished bool
	// RentPaidByEmployer, when set, marks leased accommodation: the value
	// is the lesser of rent paid and the percentage of basic.
	RentPaidByEmployer decimal.Decimal
	AmountRecovered    decimal.Decimal
}

// MotorCarPerk describes an employer-provided vehicle.
type MotorCarPerk struct {
	EngineCC        int
	FuelProvided    bool
	DriverProvided  bool
	MonthsAvailable int // zero means the full year
	AmountRecovered decimal.Decimal
}

// LoanPerk describes an interest-free or concessional loan.
type LoanPerk struct {
	Principal   decimal.Decimal
	MarketRate  decimal.Decimal // percent per annum
	ChargedRate decimal.Decimal // percent per annum
	Months      int
}

// ESOPPerk describes equity compensation exercised during the year.
type ESOPPerk struct {
	Units         int64
	FairValue     decimal.Decimal // per unit, on exercise date
	ExercisePrice decimal.Decimal // per unit
}

// PerquisiteDetails groups every benefit granted during the year.
type PerquisiteDetails struct {
	Accommodation *AccommodationPerk
	MotorCar      *MotorCarPerk
	Loans         []LoanPerk
	ESOPs         []ESOPPerk
}

// PerquisiteValuation itemizes the taxable value per benefit type.
type PerquisiteValuation struct {
	Accommodation decimal.Decimal `json:"accommodation"`
	MotorCar      decimal.Decimal `json:"motor_car"`
	Loans         decimal.Decimal `json:"loans"`
	ESOPs         decimal.Decimal `json:"esops"`
	Total         decimal.Decimal `json:"total"`
}

// ValuePerquisites sums the independently valued benefit types.
func ValuePerquisites(basicSalary decimal.Decimal, details PerquisiteDetails) PerquisiteValuation {
	var v PerquisiteValuation
	if details.Accommodation != nil {
		v.Accommodation = valueAccommodation(basicSalary, *details.Accommodation)
	}
	if details.MotorCar != nil {
		v.MotorCar = valueMotorCar(*details.MotorCar)
	}
	for _, loan := range details.Loans {
		v.Loans = v.Loans.Add(valueLoan(loan))
	}
	for _, esop := range details.ESOPs {
		v.ESOPs = v.ESOPs.Add(valueESOP(esop))
	}
	v.Total = v.Accommodation.Add(v.MotorCar).Add(v.Loans).Add(v.ESOPs)
	return v
}

func valueAccommodation(basicSalary decimal.Decimal, perk AccommodationPerk) decimal.Decimal {
	rate := accomNonMetroRate
	if perk.MetroCity {
		rate = accomMetroRate
	}
	if perk.Furnished {
		rate = rate.Add(accomFurnished)
	}
	value := basicSalary.Mul(rate)
	if perk.RentPaidByEmployer.GreaterThan(decimal.Zero) {
		value = decimal.Min(perk.RentPaidByEmployer, value)
	}
	value = value.Sub(perk.AmountRecovered)
	if value.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return value
}

func valueMotorCar(perk MotorCarPerk) decimal.Decimal {
	months := int64(perk.MonthsAvailable)
	if months <= 0 || months > 12 {
		months = 12
	}
	monthly := carSmallMonthly
	fuel := fuelSmallMonthly
	if perk.EngineCC > 1600 {
		monthly = carLargeMonthly
		fuel = fuelLargeMonthly
	}
	if perk.FuelProvided {
		monthly = monthly.Add(fuel)
	}
	if perk.DriverProvided {
		monthly = monthly.Add(driverMonthly)
	}
	value := monthly.Mul(decimal.NewFromInt(months)).Sub(perk.AmountRecovered)
	if value.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return value
}

func valueLoan(loan LoanPerk) decimal.Decimal {
	months := int64(loan.Months)
	if months <= 0 {
		months = 12
	}
	spread := loan.MarketRate.Sub(loan.ChargedRate)
	if spread.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	benefit := loan.Principal.Mul(spread).Div(hundred).
		Mul(decimal.NewFromInt(months)).Div(twelve)
	// Petty loans enjoy a small exempt slice.
	benefit = benefit.Sub(decimal.Min(loanExemptSlice, benefit))
	return benefit
}

func valueESOP(esop ESOPPerk) decimal.Decimal {
	gain := esop.FairValue.Sub(esop.ExercisePrice)
	if gain.LessThanOrEqual(decimal.Zero) || esop.Units <= 0 {
		return decimal.Zero
	}
	return gain.Mul(decimal.NewFromInt(esop.Units))
}
