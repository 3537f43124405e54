package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// ltaJourneysPerBlock is the statutory limit of exempt journeys in one
// rolling four-year block under Section 10(5).
const ltaJourneysPerBlock = 2

// LTAClaim is a leave-travel allowance claim for the year.
type LTAClaim struct {
	AllowanceReceived decimal.Decimal
	TravelCost        decimal.Decimal
	// JourneysClaimedInBlock counts exemptions already claimed in the
	// current block, before this claim.
	JourneysClaimedInBlock int
}

// LTAResult carries the exemption and, when the block is exhausted, the
// advisory explaining why the claim degraded to zero.
type LTAResult struct {
	Exempt  decimal.Decimal
	Warning *domain.Warning
}

// ComputeLTAExemption grants min(allowance received, actual travel cost),
// subject to the block-year eligibility check. A failed check is a
// warning with a zero exemption, never an error.
func ComputeLTAExemption(c LTAClaim) LTAResult {
	if c.JourneysClaimedInBlock >= ltaJourneysPerBlock {
		return LTAResult{
			Exempt: decimal.Zero,
			Warning: &domain.Warning{
				Code: domain.WarnLTABlockExhausted,
				Message: fmt.Sprintf("leave travel exemption already claimed %d times in the current block; claim ignored",
					c.JourneysClaimedInBlock),
			},
		}
	}
	exempt := decimal.Min(c.AllowanceReceived, c.TravelCost)
	if exempt.LessThan(decimal.Zero) {
		exempt = decimal.Zero
	}
	return LTAResult{Exempt: exempt}
}
