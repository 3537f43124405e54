// Package rules supplies immutable, assessment-year-scoped tax parameters.
// Rule data lives in versioned YAML documents, one per (year, regime);
// adding a year is a pure data change.
package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/taxghar/taxghar/internal/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// Provider is the read-only rule table keyed by (year, regime). Loaded
// once at construction and never mutated; safe for concurrent use.
type Provider struct {
	rules map[domain.AssessmentYear]map[domain.Regime]*domain.RuleSet
	years []domain.AssessmentYear
}

// NewProvider loads the rule sets shipped with the binary.
func NewProvider() (*Provider, error) {
	return newProviderFromFS(embedded, "data")
}

// NewProviderFromDir loads rule sets from an external directory, for
// deployments that maintain their own rule data.
func NewProviderFromDir(dir string) (*Provider, error) {
	return newProviderFromFS(os.DirFS(dir), ".")
}

func newProviderFromFS(fsys fs.FS, root string) (*Provider, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule directory: %w", err)
	}

	p := &Provider{rules: make(map[domain.AssessmentYear]map[domain.Regime]*domain.RuleSet)}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %s: %w", entry.Name(), err)
		}
		var rs domain.RuleSet
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse rule file %s: %w", entry.Name(), err)
		}
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("rule file %s: %w", entry.Name(), err)
		}
		if _, exists := p.rules[rs.Year][rs.Regime]; exists {
			return nil, fmt.Errorf("rule file %s: duplicate rule set for %s/%s", entry.Name(), rs.Year, rs.Regime)
		}
		if p.rules[rs.Year] == nil {
			p.rules[rs.Year] = make(map[domain.Regime]*domain.RuleSet)
		}
		p.rules[rs.Year][rs.Regime] = &rs
	}
	if len(p.rules) == 0 {
		return nil, fmt.Errorf("no rule sets found")
	}

	for year := range p.rules {
		p.years = append(p.years, year)
	}
	sort.Slice(p.years, func(i, j int) bool { return p.years[i] < p.years[j] })
	return p, nil
}

// RulesFor returns the rule set for the year and regime. Unsupported years
// and unavailable regimes fail; they are never defaulted to a nearby year.
func (p *Provider) RulesFor(year domain.AssessmentYear, regime domain.Regime) (*domain.RuleSet, error) {
	byRegime, ok := p.rules[year]
	if !ok {
		return nil, &domain.UnsupportedYearError{Year: year}
	}
	rs, ok := byRegime[regime]
	if !ok {
		return nil, &domain.RegimeUnavailableError{Year: year, Regime: regime}
	}
	return rs, nil
}

// IsRegimeAvailable reports whether the regime existed in the given year.
func (p *Provider) IsRegimeAvailable(year domain.AssessmentYear, regime domain.Regime) bool {
	_, err := p.RulesFor(year, regime)
	return err == nil
}

// SupportedYears returns the loaded assessment years in ascending order.
func (p *Provider) SupportedYears() []domain.AssessmentYear {
	out := make([]domain.AssessmentYear, len(p.years))
	copy(out, p.years)
	return out
}

// DefaultRegime returns the regime the statute presumes for the year:
// whichever rule set marks itself default, else the old regime.
func (p *Provider) DefaultRegime(year domain.AssessmentYear) (domain.Regime, error) {
	byRegime, ok := p.rules[year]
	if !ok {
		return "", &domain.UnsupportedYearError{Year: year}
	}
	for regime, rs := range byRegime {
		if rs.Default {
			return regime, nil
		}
	}
	return domain.RegimeOld, nil
}

// AvailableRegimes returns the regimes configured for the year.
func (p *Provider) AvailableRegimes(year domain.AssessmentYear) ([]domain.Regime, error) {
	byRegime, ok := p.rules[year]
	if !ok {
		return nil, &domain.UnsupportedYearError{Year: year}
	}
	regimes := make([]domain.Regime, 0, len(byRegime))
	if _, ok := byRegime[domain.RegimeOld]; ok {
		regimes = append(regimes, domain.RegimeOld)
	}
	if _, ok := byRegime[domain.RegimeNew]; ok {
		regimes = append(regimes, domain.RegimeNew)
	}
	return regimes, nil
}
