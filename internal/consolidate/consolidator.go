// Package consolidate merges per-employer income records for one
// taxpayer and financial year into a single record, so job changers and
// moonlighters are taxed on their true aggregate income instead of
// per-employer slices that each enjoyed a full slab walk.
package consolidate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// duplicateTolerance is how far apart two same-employer records' gross
// and TDS figures may be and still count as the same document filed
// twice: one percent, absorbing OCR noise in re-scanned forms.
var duplicateTolerance = decimal.NewFromFloat(0.01)

// highTDSRatio flags records whose TDS exceeds this share of gross
// salary, which usually means a misread amount.
var highTDSRatio = decimal.NewFromFloat(0.35)

// Consolidate merges the records into one. All records must carry the
// same PAN and financial year; anything else is an error, not a
// warning, because silently mixing taxpayers or periods would produce a
// plausible-looking wrong assessment. Suspect data (duplicates, TDS
// that was deducted but not deposited, implausible TDS ratios) is
// still summed but flagged.
func Consolidate(records []domain.IncomeRecord) (*domain.ConsolidatedIncomeRecord, error) {
	if len(records) == 0 {
		return nil, &domain.InvalidInputError{Field: "records", Reason: "nothing to consolidate"}
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, err
		}
	}

	first := records[0]
	pan := normalizePAN(first.EmployeePAN)
	for i := range records[1:] {
		r := &records[i+1]
		if got := normalizePAN(r.EmployeePAN); got != pan {
			return nil, &domain.InconsistentTaxpayerError{Field: "pan", Want: pan, Got: got}
		}
		if r.FinancialYear != first.FinancialYear {
			return nil, &domain.InconsistentPeriodError{Want: first.FinancialYear, Got: r.FinancialYear}
		}
	}

	merged := &domain.ConsolidatedIncomeRecord{
		IncomeRecord: domain.IncomeRecord{
			EmployeePAN:   pan,
			EmployeeName:  first.EmployeeName,
			EmployerName:  "consolidated",
			FinancialYear: first.FinancialYear,
			Exemptions:    map[string]decimal.Decimal{},
			Deductions:    map[string]decimal.Decimal{},
		},
		SourceCount: len(records),
	}

	seen := map[string][]domain.IncomeRecord{}
	for _, r := range records {
		merged.SalaryIncome = merged.SalaryIncome.Add(r.SalaryIncome)
		merged.Perquisites = merged.Perquisites.Add(r.Perquisites)
		merged.ProfitsInLieu = merged.ProfitsInLieu.Add(r.ProfitsInLieu)
		merged.BasicSalary = merged.BasicSalary.Add(r.BasicSalary)
		merged.DearnessAllowance = merged.DearnessAllowance.Add(r.DearnessAllowance)
		merged.HRAReceived = merged.HRAReceived.Add(r.HRAReceived)
		merged.LTAReceived = merged.LTAReceived.Add(r.LTAReceived)
		merged.ProfessionalTax = merged.ProfessionalTax.Add(r.ProfessionalTax)
		merged.TDSDeducted = merged.TDSDeducted.Add(r.TDSDeducted)
		merged.TDSDeposited = merged.TDSDeposited.Add(r.TDSDeposited)
		for k, v := range r.Exemptions {
			merged.Exemptions[k] = merged.Exemptions[k].Add(v)
		}
		for k, v := range r.Deductions {
			merged.Deductions[k] = merged.Deductions[k].Add(v)
		}

		merged.Employers = append(merged.Employers, domain.EmployerSlice{
			EmployerName: r.EmployerName,
			EmployerTAN:  r.EmployerTAN,
			GrossSalary:  r.GrossSalary(),
			TDSDeducted:  r.TDSDeducted,
		})

		key := r.EmployerKey()
		for _, prior := range seen[key] {
			if looksDuplicate(&prior, &r) {
				merged.Warnings = append(merged.Warnings, domain.Warning{
					Code: domain.WarnDuplicateRecord,
					Message: fmt.Sprintf("two records from %s with near-identical gross and TDS; both are included, drop one if they are the same document",
						employerLabel(&r)),
					Employers: []string{employerLabel(&r)},
				})
				break
			}
		}
		seen[key] = append(seen[key], r)
	}

	merged.Warnings = append(merged.Warnings, tdsFindings(merged, records)...)
	return merged, nil
}

// tdsFindings checks the merged TDS figures for deposit shortfalls and
// implausible deduction ratios.
func tdsFindings(merged *domain.ConsolidatedIncomeRecord, records []domain.IncomeRecord) []domain.Warning {
	var warnings []domain.Warning

	if merged.TDSDeposited.IsPositive() && merged.TDSDeposited.LessThan(merged.TDSDeducted) {
		short := merged.TDSDeducted.Sub(merged.TDSDeposited)
		warnings = append(warnings, domain.Warning{
			Code: domain.WarnTDSMismatch,
			Message: fmt.Sprintf("TDS deducted %s but only %s deposited; %s may not appear in Form 26AS",
				merged.TDSDeducted.StringFixed(0), merged.TDSDeposited.StringFixed(0), short.StringFixed(0)),
		})
	}

	for i := range records {
		r := &records[i]
		gross := r.GrossSalary()
		if !gross.IsPositive() {
			continue
		}
		if r.TDSDeducted.Div(gross).GreaterThan(highTDSRatio) {
			warnings = append(warnings, domain.Warning{
				Code: domain.WarnHighTDSRatio,
				Message: fmt.Sprintf("TDS of %s against gross %s from %s is implausibly high; check the source figures",
					r.TDSDeducted.StringFixed(0), gross.StringFixed(0), employerLabel(r)),
				Employers: []string{employerLabel(r)},
			})
		}
	}
	return warnings
}

// looksDuplicate reports whether two same-employer records are close
// enough on gross and TDS to be the same document.
func looksDuplicate(a, b *domain.IncomeRecord) bool {
	return withinTolerance(a.GrossSalary(), b.GrossSalary()) &&
		withinTolerance(a.TDSDeducted, b.TDSDeducted)
}

func withinTolerance(a, b decimal.Decimal) bool {
	larger := decimal.Max(a.Abs(), b.Abs())
	if larger.IsZero() {
		return true
	}
	return a.Sub(b).Abs().Div(larger).LessThanOrEqual(duplicateTolerance)
}

func employerLabel(r *domain.IncomeRecord) string {
	if r.EmployerName != "" {
		return r.EmployerName
	}
	return r.EmployerTAN
}

func normalizePAN(pan string) string {
	return strings.ToUpper(strings.TrimSpace(pan))
}
