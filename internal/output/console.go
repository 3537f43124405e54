package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

var hundredPct = decimal.NewFromInt(100)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(26)

	payableStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	refundStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	recommendStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// ConsoleFormatter renders a styled terminal report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(assessment *domain.Assessment) ([]byte, error) {
	buf := &bytes.Buffer{}

	buf.WriteString(titleStyle.Render(fmt.Sprintf("INCOME TAX ASSESSMENT, AY %s", assessment.Year)))
	buf.WriteString("\n\n")

	for _, regime := range orderedRegimes(assessment.Results) {
		c.writeRegime(buf, assessment.Results[regime])
		buf.WriteString("\n")
	}

	if rec := assessment.Recommendation; rec != nil {
		msg := fmt.Sprintf("Recommended: %s regime", rec.Regime)
		if rec.Saving.IsPositive() {
			msg += fmt.Sprintf(", saves %s (%s)", FormatCurrency(rec.Saving), FormatPercentage(rec.SavingPercent))
		} else {
			msg += ", both regimes cost the same"
		}
		buf.WriteString(recommendStyle.Render(msg))
		buf.WriteString("\n")
	}

	c.writeWarnings(buf, assessment)
	return buf.Bytes(), nil
}

func (c ConsoleFormatter) writeRegime(buf *bytes.Buffer, r *domain.TaxResult) {
	buf.WriteString(sectionStyle.Render(fmt.Sprintf("%s REGIME", strings.ToUpper(string(r.Regime)))))
	buf.WriteString("\n")

	line := func(label string, value string) {
		buf.WriteString(labelStyle.Render(label))
		buf.WriteString(value)
		buf.WriteString("\n")
	}

	line("Gross salary", FormatCurrency(r.GrossSalary))
	for _, key := range sortedAmountKeys(r.Exemptions) {
		line("  exempt "+key, "-"+FormatCurrency(r.Exemptions[key]))
	}
	if r.StandardDeduction.IsPositive() {
		line("Standard deduction", "-"+FormatCurrency(r.StandardDeduction))
	}
	for _, key := range sortedAmountKeys(r.Deductions) {
		line("  deduction "+key, "-"+FormatCurrency(r.Deductions[key]))
	}
	line("Taxable income", FormatCurrency(r.TaxableIncome))
	buf.WriteString("\n")

	for _, slab := range r.SlabBreakdown {
		if slab.Tax.IsZero() && slab.Taxable.IsZero() {
			continue
		}
		upperBound := "above"
		if slab.Upper != nil {
			upperBound = FormatCurrency(*slab.Upper)
		}
		line(fmt.Sprintf("  %s – %s @ %s%%", FormatCurrency(slab.Lower), upperBound, slab.Rate.Mul(hundredPct).StringFixed(0)),
			FormatCurrency(slab.Tax))
	}
	line("Tax before rebate", FormatCurrency(r.TaxBeforeRebate))
	if r.Rebate.IsPositive() {
		line("Rebate u/s 87A", "-"+FormatCurrency(r.Rebate))
	}
	if r.Surcharge.IsPositive() {
		note := ""
		if r.MarginalRelief {
			note = "  (marginal relief applied)"
		}
		line("Surcharge", FormatCurrency(r.Surcharge)+note)
	}
	line("Health & education cess", FormatCurrency(r.Cess))
	if r.Section89Relief.IsPositive() {
		line("Relief u/s 89(1)", "-"+FormatCurrency(r.Section89Relief))
	}
	line("Total liability", FormatCurrency(r.TotalLiability))
	line("TDS paid", FormatCurrency(r.TDSPaid))
	if r.Balance.IsPositive() {
		line("Balance payable", payableStyle.Render(FormatCurrency(r.Balance)))
	} else {
		line("Refund due", refundStyle.Render(FormatCurrency(r.Balance.Neg())))
	}
	line("Effective rate", FormatPercentage(r.EffectiveRate))
}

func (c ConsoleFormatter) writeWarnings(buf *bytes.Buffer, assessment *domain.Assessment) {
	var all []domain.Warning
	all = append(all, assessment.Warnings...)
	for _, regime := range orderedRegimes(assessment.Results) {
		all = append(all, assessment.Results[regime].Warnings...)
	}
	if len(all) == 0 {
		return
	}
	buf.WriteString("\n")
	buf.WriteString(sectionStyle.Render("FINDINGS"))
	buf.WriteString("\n")
	seen := map[string]bool{}
	for _, w := range all {
		if seen[w.Message] {
			continue
		}
		seen[w.Message] = true
		buf.WriteString(warnStyle.Render("  ! " + w.Message))
		buf.WriteString("\n")
	}
}

// orderedRegimes keeps console and CSV output stable: old before new.
func orderedRegimes(results map[domain.Regime]*domain.TaxResult) []domain.Regime {
	var regimes []domain.Regime
	for _, regime := range []domain.Regime{domain.RegimeOld, domain.RegimeNew} {
		if _, ok := results[regime]; ok {
			regimes = append(regimes, regime)
		}
	}
	return regimes
}

func sortedAmountKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
