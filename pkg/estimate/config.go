package estimate

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/aidbuddy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// YearConfig holds the grant figures for one award year, in whole dollars.
type YearConfig struct {
	MaxGrant int `yaml:"max_grant" json:"max_grant"`
	MinGrant int `yaml:"min_grant" json:"min_grant"`
}

// Validate checks that the figures describe a usable range.
func (c YearConfig) Validate() error {
	if c.MaxGrant <= 0 {
		return fmt.Errorf("max_grant must be positive, got %d", c.MaxGrant)
	}
	if c.MinGrant < 0 || c.MinGrant > c.MaxGrant {
		return fmt.Errorf("min_grant must be within [0, %d], got %d", c.MaxGrant, c.MinGrant)
	}
	return nil
}

// Table maps award years ("YYYY-YY") to their configuration.
type Table map[string]YearConfig

// DefaultTable returns the built-in award years.
func DefaultTable() Table {
	return Table{
		"2025-26": {MaxGrant: 7395, MinGrant: 740},
		"2026-27": {MaxGrant: 7395, MinGrant: 740},
	}
}

// Lookup returns the configuration for year or a ConfigurationError.
func (t Table) Lookup(year string) (YearConfig, error) {
	cfg, ok := t[year]
	if !ok {
		return YearConfig{}, &domain.ConfigurationError{AwardYear: year}
	}
	return cfg, nil
}

// Years returns the configured award years in ascending order.
func (t Table) Years() []string {
	years := make([]string, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// tableFile is the on-disk shape of an award-year override file.
type tableFile struct {
	AwardYears map[string]YearConfig `yaml:"award_years"`
}

// LoadTable reads a YAML file of award years and merges it over the defaults.
// An empty path returns the defaults unchanged.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read award years: %w", err)
	}
	return mergeYAML(table, data)
}

// ParseTable decodes YAML award years and merges them over the defaults.
func ParseTable(data []byte) (Table, error) {
	return mergeYAML(DefaultTable(), data)
}

func mergeYAML(table Table, data []byte) (Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse award years: %w", err)
	}

	for year, cfg := range file.AwardYears {
		normalized, ok := NormalizeAwardYear(year)
		if !ok {
			return nil, fmt.Errorf("invalid award year %q (want YYYY-YY)", year)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("award year %s: %w", normalized, err)
		}
		table[normalized] = cfg
	}
	return table, nil
}

var awardYearPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)

// NormalizeAwardYear trims s, turns en and em dashes into hyphens and reports
// whether the result has the exact "YYYY-YY" shape.
func NormalizeAwardYear(s string) (string, bool) {
	t := strings.TrimSpace(s)
	t = strings.NewReplacer("–", "-", "—", "-").Replace(t)
	if !awardYearPattern.MatchString(t) {
		return "", false
	}
	return t, true
}
