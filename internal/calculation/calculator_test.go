package calculation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxghar/taxghar/internal/domain"
	"github.com/taxghar/taxghar/internal/rules"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	provider, err := rules.NewProvider()
	require.NoError(t, err)
	return NewCalculator(provider)
}

func TestNewCalculator(t *testing.T) {
	calc := newTestCalculator(t)
	assert.NotNil(t, calc.Rules, "Should hold the rule provider")
	assert.NotNil(t, calc.Arrears, "Should initialize the arrears calculator")
	assert.NotNil(t, calc.Logger, "Should initialize logger")
}

func TestCalculator_SetLogger(t *testing.T) {
	calc := newTestCalculator(t)
	calc.SetLogger(nil)
	assert.IsType(t, NopLogger{}, calc.Logger, "nil restores the no-op logger")
}

func TestCalculator_Calculate_BothRegimes(t *testing.T) {
	calc := newTestCalculator(t)

	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:   "2024-25",
		Record: sampleRecord(),
		Components: ComponentInputs{
			RentPaid: decimal.NewFromInt(240000),
			City:     domain.CityNonMetro,
		},
	})
	require.NoError(t, err)
	require.Len(t, assessment.Results, 2)

	oldRes := assessment.Results[domain.RegimeOld]
	newRes := assessment.Results[domain.RegimeNew]
	require.NotNil(t, oldRes)
	require.NotNil(t, newRes)

	// Old: taxable 1197600 -> 171780 slab tax + 4% cess.
	assert.True(t, decimal.NewFromInt(1197600).Equal(oldRes.TaxableIncome), "got %s", oldRes.TaxableIncome)
	assert.True(t, decimal.NewFromInt(178651).Equal(oldRes.TotalLiability), "got %s", oldRes.TotalLiability)

	// New: taxable 1547600 -> 164280 slab tax + 4% cess.
	assert.True(t, decimal.NewFromInt(1547600).Equal(newRes.TaxableIncome), "got %s", newRes.TaxableIncome)
	assert.True(t, decimal.NewFromInt(170851).Equal(newRes.TotalLiability), "got %s", newRes.TotalLiability)

	require.NotNil(t, assessment.Recommendation)
	assert.Equal(t, domain.RegimeNew, assessment.Recommendation.Regime)
	assert.True(t, decimal.NewFromInt(7800).Equal(assessment.Recommendation.Saving),
		"got %s", assessment.Recommendation.Saving)

	// TDS of 150000 against the recommended regime's 170851.
	assert.True(t, decimal.NewFromInt(20851).Equal(newRes.Balance), "got %s", newRes.Balance)
}

func TestCalculator_Calculate_MixedIncomeWithBankInterest(t *testing.T) {
	calc := newTestCalculator(t)

	record := &domain.IncomeRecord{
		EmployeePAN:   "ABCPD1234E",
		EmployerName:  "Acme Widgets",
		FinancialYear: "2023-24",
		SalaryIncome:  decimal.NewFromInt(1500000),
		BasicSalary:   decimal.NewFromInt(600000),
		HRAReceived:   decimal.NewFromInt(180000),
		Deductions: map[string]decimal.Decimal{
			domain.Section80C:     decimal.NewFromInt(150000),
			domain.Section80CCD1B: decimal.NewFromInt(50000),
		},
		TDSDeducted: decimal.NewFromInt(185000),
	}
	components := ComponentInputs{
		RentPaid: decimal.NewFromInt(240000),
		City:     domain.CityMetro,
		Other:    domain.OtherIncome{BankInterest: decimal.NewFromInt(45000)},
	}

	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:       "2024-25",
		Record:     record,
		Components: components,
	})
	require.NoError(t, err)
	require.Len(t, assessment.Results, 2)

	oldRes := assessment.Results[domain.RegimeOld]
	newRes := assessment.Results[domain.RegimeNew]
	require.NotNil(t, oldRes)
	require.NotNil(t, newRes)

	// Old: 1500000 - 180000 HRA - 50000 std + 45000 interest - 200000.
	assert.True(t, decimal.NewFromInt(1115000).Equal(oldRes.TaxableIncome), "got %s", oldRes.TaxableIncome)
	assert.True(t, decimal.NewFromInt(152880).Equal(oldRes.TotalLiability), "got %s", oldRes.TotalLiability)

	// New: only the standard deduction comes off; the interest still counts.
	assert.True(t, decimal.NewFromInt(1495000).Equal(newRes.TaxableIncome), "got %s", newRes.TaxableIncome)
	assert.True(t, decimal.NewFromInt(154960).Equal(newRes.TotalLiability), "got %s", newRes.TotalLiability)

	assert.False(t, oldRes.TaxableIncome.IsNegative())
	assert.False(t, newRes.TaxableIncome.IsNegative())
	assert.False(t, oldRes.TotalLiability.Equal(newRes.TotalLiability),
		"the regimes price this income differently")

	require.NotNil(t, assessment.Recommendation)
	assert.Equal(t, domain.RegimeOld, assessment.Recommendation.Regime)
	assert.True(t, decimal.NewFromInt(2080).Equal(assessment.Recommendation.Saving),
		"got %s", assessment.Recommendation.Saving)

	// TDS of 185000 overshoots the old-regime bill.
	assert.True(t, decimal.NewFromInt(-32120).Equal(oldRes.Balance), "got %s", oldRes.Balance)

	// Dropping the interest moves the new-regime taxable by exactly that
	// amount; nothing else in the pipeline touches other income.
	components.Other = domain.OtherIncome{}
	plain, err := calc.Calculate(context.Background(), &Request{
		Year:       "2024-25",
		Record:     record,
		Components: components,
	})
	require.NoError(t, err)
	diff := newRes.TaxableIncome.Sub(plain.Results[domain.RegimeNew].TaxableIncome)
	assert.True(t, decimal.NewFromInt(45000).Equal(diff), "got %s", diff)
}

func TestCalculator_Calculate_RefundShowsNegativeBalance(t *testing.T) {
	calc := newTestCalculator(t)

	record := sampleRecord()
	record.TDSDeducted = decimal.NewFromInt(300000)
	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:    "2024-25",
		Regimes: []domain.Regime{domain.RegimeNew},
		Record:  record,
	})
	require.NoError(t, err)

	res := assessment.Results[domain.RegimeNew]
	require.NotNil(t, res)
	assert.True(t, res.Balance.IsNegative(), "overpaid TDS comes back as a refund")
}

func TestCalculator_Calculate_YearDerivedFromRecord(t *testing.T) {
	calc := newTestCalculator(t)

	assessment, err := calc.Calculate(context.Background(), &Request{
		Record: sampleRecord(), // FY 2023-24
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssessmentYear("2024-25"), assessment.Year)
}

func TestCalculator_Calculate_RegimeUnavailable(t *testing.T) {
	calc := newTestCalculator(t)

	record := sampleRecord()
	record.FinancialYear = "2019-20"
	_, err := calc.Calculate(context.Background(), &Request{
		Year:    "2020-21",
		Regimes: []domain.Regime{domain.RegimeNew},
		Record:  record,
	})
	var unavailable *domain.RegimeUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestCalculator_Calculate_OldOnlyYearSkipsRecommendation(t *testing.T) {
	calc := newTestCalculator(t)

	record := sampleRecord()
	record.FinancialYear = "2019-20"
	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:   "2020-21",
		Record: record,
	})
	require.NoError(t, err)
	assert.Len(t, assessment.Results, 1, "only the old regime existed in AY 2020-21")
	assert.Nil(t, assessment.Recommendation, "nothing to compare against")
}

func TestCalculator_Calculate_ArrearsReliefReducesLiability(t *testing.T) {
	calc := newTestCalculator(t)

	record := &domain.IncomeRecord{
		EmployeePAN:   "ABCPD1234E",
		EmployerName:  "Acme Widgets",
		FinancialYear: "2023-24",
		SalaryIncome:  decimal.NewFromInt(1250000), // includes 200000 of arrears
	}
	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:    "2024-25",
		Regimes: []domain.Regime{domain.RegimeNew},
		Record:  record,
		Arrears: []ArrearSlice{{
			Year:               "2023-24",
			Amount:             decimal.NewFromInt(200000),
			PriorTaxableIncome: decimal.NewFromInt(400000),
		}},
	})
	require.NoError(t, err)

	res := assessment.Results[domain.RegimeNew]
	require.NotNil(t, res)
	// Taxable 1200000 after the standard deduction; relief spreads the
	// arrears back to a year that taxed them lighter.
	assert.True(t, decimal.NewFromInt(7800).Equal(res.Section89Relief), "got %s", res.Section89Relief)
	assert.True(t, decimal.NewFromInt(85800).Equal(res.TotalLiability), "got %s", res.TotalLiability)
}

func TestCalculator_Calculate_InputErrors(t *testing.T) {
	calc := newTestCalculator(t)

	t.Run("no record", func(t *testing.T) {
		_, err := calc.Calculate(context.Background(), &Request{Year: "2024-25"})
		var invalid *domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("both record forms", func(t *testing.T) {
		_, err := calc.Calculate(context.Background(), &Request{
			Year:         "2024-25",
			Record:       sampleRecord(),
			Consolidated: &domain.ConsolidatedIncomeRecord{IncomeRecord: *sampleRecord()},
		})
		require.Error(t, err)
	})

	t.Run("invalid record", func(t *testing.T) {
		record := sampleRecord()
		record.EmployeePAN = ""
		_, err := calc.Calculate(context.Background(), &Request{Year: "2024-25", Record: record})
		require.Error(t, err)
	})

	t.Run("unsupported year", func(t *testing.T) {
		_, err := calc.Calculate(context.Background(), &Request{Year: "1995-96", Record: sampleRecord()})
		var unsupported *domain.UnsupportedYearError
		require.ErrorAs(t, err, &unsupported)
	})
}

func TestCalculator_Calculate_ContextCancellation(t *testing.T) {
	calc := newTestCalculator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := calc.Calculate(ctx, &Request{Year: "2024-25", Record: sampleRecord()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculator_Calculate_ConsolidatedWarningsCarry(t *testing.T) {
	calc := newTestCalculator(t)

	consolidated := &domain.ConsolidatedIncomeRecord{
		IncomeRecord: *sampleRecord(),
		SourceCount:  2,
		Warnings: []domain.Warning{
			{Code: domain.WarnDuplicateRecord, Message: "possible duplicate"},
		},
	}
	assessment, err := calc.Calculate(context.Background(), &Request{
		Year:         "2024-25",
		Consolidated: consolidated,
	})
	require.NoError(t, err)
	require.Len(t, assessment.Warnings, 1)
	assert.Equal(t, domain.WarnDuplicateRecord, assessment.Warnings[0].Code)
}
