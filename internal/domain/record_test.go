package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() IncomeRecord {
	return IncomeRecord{
		EmployeePAN:   "ABCPD1234E",
		EmployeeName:  "A Taxpayer",
		EmployerName:  "Acme Widgets",
		EmployerTAN:   "BLRA12345C",
		FinancialYear: "2023-24",
		SalaryIncome:  decimal.NewFromInt(1200000),
		BasicSalary:   decimal.NewFromInt(600000),
		TDSDeducted:   decimal.NewFromInt(90000),
	}
}

func TestIncomeRecord_Validate(t *testing.T) {
	t.Run("valid record passes", func(t *testing.T) {
		r := validRecord()
		assert.NoError(t, r.Validate())
	})

	t.Run("missing PAN", func(t *testing.T) {
		r := validRecord()
		r.EmployeePAN = "  "
		err := r.Validate()
		require.Error(t, err)
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "employee_pan", invalid.Field)
	})

	t.Run("employer name or TAN suffices", func(t *testing.T) {
		r := validRecord()
		r.EmployerName = ""
		assert.NoError(t, r.Validate(), "TAN alone should be enough")

		r.EmployerTAN = ""
		assert.Error(t, r.Validate(), "neither name nor TAN should fail")
	})

	t.Run("malformed financial year", func(t *testing.T) {
		r := validRecord()
		r.FinancialYear = "FY24"
		assert.Error(t, r.Validate())
	})

	t.Run("no income", func(t *testing.T) {
		r := validRecord()
		r.SalaryIncome = decimal.Zero
		assert.Error(t, r.Validate())
	})

	t.Run("negative amounts rejected", func(t *testing.T) {
		r := validRecord()
		r.TDSDeducted = decimal.NewFromInt(-1)
		assert.Error(t, r.Validate())

		r = validRecord()
		r.Deductions = map[string]decimal.Decimal{Section80C: decimal.NewFromInt(-5)}
		assert.Error(t, r.Validate())
	})
}

func TestIncomeRecord_GrossSalary(t *testing.T) {
	r := validRecord()
	r.Perquisites = decimal.NewFromInt(50000)
	r.ProfitsInLieu = decimal.NewFromInt(25000)
	assert.True(t, decimal.NewFromInt(1275000).Equal(r.GrossSalary()))
}

func TestIncomeRecord_EmployerKey(t *testing.T) {
	r := validRecord()
	assert.Equal(t, "BLRA12345C", r.EmployerKey(), "TAN wins when present")

	r.EmployerTAN = ""
	r.EmployerName = "  acme   widgets "
	assert.Equal(t, "ACME WIDGETS", r.EmployerKey(), "name is normalized")
}

func TestIncomeRecord_JSONRoundTrip(t *testing.T) {
	r := validRecord()
	r.Deductions = map[string]decimal.Decimal{Section80C: decimal.NewFromInt(150000)}

	data, err := json.Marshal(&r)
	require.NoError(t, err)

	var back IncomeRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.SalaryIncome.Equal(back.SalaryIncome))
	assert.True(t, r.Deductions[Section80C].Equal(back.Deductions[Section80C]))
}
