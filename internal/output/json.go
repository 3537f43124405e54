package output

import (
	"encoding/json"

	"github.com/taxghar/taxghar/internal/domain"
)

// JSONFormatter emits the assessment as JSON. Decimal amounts marshal
// as quoted strings, so figures survive a round trip exactly.
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(assessment *domain.Assessment) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(assessment, "", "  ")
	}
	return json.Marshal(assessment)
}
