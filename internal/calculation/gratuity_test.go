package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeGratuityExemption(t *testing.T) {
	t.Run("government gratuity is fully exempt", func(t *testing.T) {
		got := ComputeGratuityExemption(GratuityClaim{
			Received: decimal.NewFromInt(3500000),
			Category: EmploymentGovernment,
		})
		assert.True(t, decimal.NewFromInt(3500000).Equal(got.Exempt))
		assert.True(t, got.Taxable.IsZero())
	})

	t.Run("covered employee uses 15/26", func(t *testing.T) {
		got := ComputeGratuityExemption(GratuityClaim{
			Received:        decimal.NewFromInt(600000),
			LastDrawnSalary: decimal.NewFromInt(52000),
			YearsOfService:  decimal.NewFromInt(18),
			Category:        EmploymentCovered,
		})
		// 52000 * 15/26 * 18 = 540000, below both received and ceiling.
		assert.True(t, decimal.NewFromInt(540000).Equal(got.Exempt), "got %s", got.Exempt)
		assert.True(t, decimal.NewFromInt(60000).Equal(got.Taxable))
	})

	t.Run("uncovered employee uses 15/30", func(t *testing.T) {
		got := ComputeGratuityExemption(GratuityClaim{
			Received:        decimal.NewFromInt(600000),
			LastDrawnSalary: decimal.NewFromInt(60000),
			YearsOfService:  decimal.NewFromInt(15),
			Category:        EmploymentUncovered,
		})
		// 60000 * 15/30 * 15 = 450000.
		assert.True(t, decimal.NewFromInt(450000).Equal(got.Exempt), "got %s", got.Exempt)
	})

	t.Run("ceiling caps large payouts", func(t *testing.T) {
		got := ComputeGratuityExemption(GratuityClaim{
			Received:        decimal.NewFromInt(4000000),
			LastDrawnSalary: decimal.NewFromInt(300000),
			YearsOfService:  decimal.NewFromInt(30),
			Category:        EmploymentCovered,
		})
		assert.True(t, decimal.NewFromInt(2000000).Equal(got.Exempt), "got %s", got.Exempt)
		assert.True(t, decimal.NewFromInt(2000000).Equal(got.Taxable))
	})

	t.Run("received amount limits when formula is larger", func(t *testing.T) {
		got := ComputeGratuityExemption(GratuityClaim{
			Received:        decimal.NewFromInt(100000),
			LastDrawnSalary: decimal.NewFromInt(52000),
			YearsOfService:  decimal.NewFromInt(18),
			Category:        EmploymentCovered,
		})
		assert.True(t, decimal.NewFromInt(100000).Equal(got.Exempt))
		assert.True(t, got.Taxable.IsZero())
	})
}
