package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxghar/taxghar/internal/domain"
)

func TestNewProvider_LoadsEmbeddedRules(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)

	years := provider.SupportedYears()
	assert.Contains(t, years, domain.AssessmentYear("2020-21"))
	assert.Contains(t, years, domain.AssessmentYear("2024-25"))
	assert.IsIncreasing(t, years, "years should come back sorted")
}

func TestProvider_RulesFor(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)

	rs, err := provider.RulesFor("2024-25", domain.RegimeNew)
	require.NoError(t, err)
	assert.Equal(t, domain.AssessmentYear("2024-25"), rs.Year)
	assert.Equal(t, domain.RegimeNew, rs.Regime)
	assert.True(t, rs.StandardDeduction.IsPositive(), "new regime gets the standard deduction from AY 2024-25")

	t.Run("unsupported year", func(t *testing.T) {
		_, err := provider.RulesFor("1995-96", domain.RegimeOld)
		var unsupported *domain.UnsupportedYearError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, domain.AssessmentYear("1995-96"), unsupported.Year)
	})

	t.Run("regime not yet introduced", func(t *testing.T) {
		_, err := provider.RulesFor("2020-21", domain.RegimeNew)
		var unavailable *domain.RegimeUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, domain.RegimeNew, unavailable.Regime)
	})
}

func TestProvider_RegimeAvailability(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)

	assert.True(t, provider.IsRegimeAvailable("2024-25", domain.RegimeNew))
	assert.False(t, provider.IsRegimeAvailable("2020-21", domain.RegimeNew))

	regimes, err := provider.AvailableRegimes("2020-21")
	require.NoError(t, err)
	assert.Equal(t, []domain.Regime{domain.RegimeOld}, regimes)

	regimes, err = provider.AvailableRegimes("2024-25")
	require.NoError(t, err)
	assert.Equal(t, []domain.Regime{domain.RegimeOld, domain.RegimeNew}, regimes)
}

func TestProvider_DefaultRegime(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)

	tests := []struct {
		year domain.AssessmentYear
		want domain.Regime
	}{
		{"2020-21", domain.RegimeOld},
		{"2023-24", domain.RegimeOld},
		{"2024-25", domain.RegimeNew}, // Finance Act 2023 flipped the default
		{"2025-26", domain.RegimeNew},
	}
	for _, tt := range tests {
		got, err := provider.DefaultRegime(tt.year)
		require.NoError(t, err, "year %s", tt.year)
		assert.Equal(t, tt.want, got, "year %s", tt.year)
	}
}

func TestProvider_LoadedRuleSetsValidate(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)

	for _, year := range provider.SupportedYears() {
		regimes, err := provider.AvailableRegimes(year)
		require.NoError(t, err)
		for _, regime := range regimes {
			rs, err := provider.RulesFor(year, regime)
			require.NoError(t, err)
			assert.NoError(t, rs.Validate(), "%s/%s", year, regime)
		}
	}
}
