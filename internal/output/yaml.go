package output

import (
	"gopkg.in/yaml.v3"

	"github.com/taxghar/taxghar/internal/domain"
)

// YAMLFormatter emits the assessment as YAML.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(assessment *domain.Assessment) ([]byte, error) {
	return yaml.Marshal(assessment)
}
