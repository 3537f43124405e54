package domain

// WarningCode classifies a non-fatal finding attached to a result.
type WarningCode string

const (
	WarnDuplicateRecord    WarningCode = "duplicate_record"
	WarnOverLimitDeduction WarningCode = "over_limit_deduction"
	WarnDisallowedClaim    WarningCode = "disallowed_claim"
	WarnTDSMismatch        WarningCode = "tds_mismatch"
	WarnHighTDSRatio       WarningCode = "high_tds_ratio"
	WarnLTABlockExhausted  WarningCode = "lta_block_exhausted"
	WarnMissingOptional    WarningCode = "missing_optional_field"
)

// Warning is an advisory surfaced to the caller instead of failing the
// computation. Duplicates and over-limit claims are warnings, not errors:
// silently dropping financial data is unacceptable.
type Warning struct {
	Code      WarningCode `json:"code" yaml:"code"`
	Message   string      `json:"message" yaml:"message"`
	Employers []string    `json:"employers,omitempty" yaml:"employers,omitempty"`
}
