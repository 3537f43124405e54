package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProfessionalTaxFor(t *testing.T) {
	tests := []struct {
		state string
		want  int64
	}{
		{"Karnataka", 2400},
		{"karnataka", 2400},
		{"  West   Bengal ", 2400},
		{"Maharashtra", 2500},
		{"Delhi", 0},     // no professional tax levy
		{"Atlantis", 0},  // unknown state is zero, not an error
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			got := ProfessionalTaxFor(tt.state)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestProfessionalTaxFor_NeverExceedsCap(t *testing.T) {
	for state := range professionalTaxByState {
		assert.True(t, ProfessionalTaxFor(state).LessThanOrEqual(professionalTaxCap), "state %s", state)
	}
}
