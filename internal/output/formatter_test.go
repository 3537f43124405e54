package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxghar/taxghar/internal/domain"
)

func sampleAssessment() *domain.Assessment {
	oldRes := &domain.TaxResult{
		Year:           "2024-25",
		Regime:         domain.RegimeOld,
		GrossSalary:    decimal.NewFromInt(1600000),
		TaxableIncome:  decimal.NewFromInt(1197600),
		TotalLiability: decimal.NewFromInt(178651),
		TDSPaid:        decimal.NewFromInt(150000),
		Balance:        decimal.NewFromInt(28651),
		EffectiveRate:  decimal.NewFromFloat(11.17),
	}
	newRes := &domain.TaxResult{
		Year:           "2024-25",
		Regime:         domain.RegimeNew,
		GrossSalary:    decimal.NewFromInt(1600000),
		TaxableIncome:  decimal.NewFromInt(1547600),
		TotalLiability: decimal.NewFromInt(170851),
		TDSPaid:        decimal.NewFromInt(150000),
		Balance:        decimal.NewFromInt(20851),
		EffectiveRate:  decimal.NewFromFloat(10.68),
	}
	return &domain.Assessment{
		Year: "2024-25",
		Results: map[domain.Regime]*domain.TaxResult{
			domain.RegimeOld: oldRes,
			domain.RegimeNew: newRes,
		},
		Recommendation: &domain.Recommendation{
			Regime:        domain.RegimeNew,
			Saving:        decimal.NewFromInt(7800),
			SavingPercent: decimal.NewFromFloat(4.37),
		},
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{99999, "₹99,999"},
		{100000, "₹1,00,000"},
		{1234567, "₹12,34,567"},
		{10000000, "₹1,00,00,000"},
		{-1234567, "-₹12,34,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(decimal.NewFromInt(tt.amount)), "amount %d", tt.amount)
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"console", "json", "csv", "yaml"} {
		f, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Name())
	}

	_, err := ForFormat("pdf")
	assert.Error(t, err)
}

func TestConsoleFormatter(t *testing.T) {
	data, err := (ConsoleFormatter{}).Format(sampleAssessment())
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "AY 2024-25")
	assert.Contains(t, text, "OLD REGIME")
	assert.Contains(t, text, "NEW REGIME")
	assert.Contains(t, text, "Recommended: new regime")
	assert.True(t, strings.Index(text, "OLD REGIME") < strings.Index(text, "NEW REGIME"),
		"regimes print in a stable order")
}

func TestJSONFormatter_RoundTrip(t *testing.T) {
	data, err := (JSONFormatter{}).Format(sampleAssessment())
	require.NoError(t, err)

	var back domain.Assessment
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, decimal.NewFromInt(178651).Equal(back.Results[domain.RegimeOld].TotalLiability),
		"amounts survive the round trip exactly")
	assert.Equal(t, domain.RegimeNew, back.Recommendation.Regime)
}

func TestCSVFormatter(t *testing.T) {
	data, err := (CSVFormatter{}).Format(sampleAssessment())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per regime")

	assert.Equal(t, "Regime", rows[0][1])
	assert.Equal(t, "old", rows[1][1])
	assert.Equal(t, "new", rows[2][1])
	assert.Equal(t, "true", rows[2][len(rows[2])-1], "the recommended regime is marked")
	assert.Equal(t, "178651.00", rows[1][9])
}

func TestYAMLFormatter(t *testing.T) {
	data, err := (YAMLFormatter{}).Format(sampleAssessment())
	require.NoError(t, err)
	assert.Contains(t, string(data), "assessment_year: 2024-25")
}
