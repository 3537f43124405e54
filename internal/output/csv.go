package output

import (
	"bytes"
	"encoding/csv"

	"github.com/taxghar/taxghar/internal/domain"
)

// CSVFormatter emits one row per computed regime, for spreadsheets and
// downstream joins. Amounts are plain numbers without currency marks.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(assessment *domain.Assessment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"AssessmentYear", "Regime", "GrossSalary", "TaxableIncome",
		"TaxBeforeRebate", "Rebate", "Surcharge", "Cess", "Section89Relief",
		"TotalLiability", "TDSPaid", "Balance", "EffectiveRatePercent", "Recommended",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, regime := range orderedRegimes(assessment.Results) {
		r := assessment.Results[regime]
		recommended := "false"
		if rec := assessment.Recommendation; rec != nil && rec.Regime == regime {
			recommended = "true"
		}
		row := []string{
			string(assessment.Year),
			string(regime),
			r.GrossSalary.StringFixed(2),
			r.TaxableIncome.StringFixed(2),
			r.TaxBeforeRebate.StringFixed(2),
			r.Rebate.StringFixed(2),
			r.Surcharge.StringFixed(2),
			r.Cess.StringFixed(2),
			r.Section89Relief.StringFixed(2),
			r.TotalLiability.StringFixed(2),
			r.TDSPaid.StringFixed(2),
			r.Balance.StringFixed(2),
			r.EffectiveRate.StringFixed(2),
			recommended,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
