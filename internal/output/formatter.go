// Package output renders assessments for people and for machines.
package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxghar/taxghar/internal/domain"
)

// Formatter renders one assessment in a named format.
type Formatter interface {
	Name() string
	Format(assessment *domain.Assessment) ([]byte, error)
}

// ForFormat returns the formatter registered under the name.
func ForFormat(format string) (Formatter, error) {
	switch format {
	case "console":
		return ConsoleFormatter{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "yaml":
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatCurrency renders an amount in rupees with Indian digit
// grouping, e.g. ₹12,34,567.
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	grouped := s
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(append(parts, tail), ",")
	}
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// FormatPercentage formats a decimal as a percentage.
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
