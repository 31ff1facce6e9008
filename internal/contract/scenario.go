package contract

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
)

const countryAbbreviation = "country_a"

// Check is one query whose hits must all score the same.
type Check struct {
	Field    string      `json:"field"`
	Path     domain.Path `json:"path"`
	Query    string      `json:"query"`
	WantHits int64       `json:"want_hits"`
}

// Name describes the check, e.g. "nzl on parent.country_a.ngram".
func (c Check) Name() string {
	return fmt.Sprintf("%s on %s", c.Query, c.Path.Field(c.Field))
}

// Scenario is a set of documents indexed once and the checks run against
// them.
type Scenario struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Documents   []domain.Document `json:"documents"`
	Checks      []Check           `json:"checks"`
}

func checks(want int64, codes []string, paths ...domain.Path) []Check {
	var out []Check
	for _, path := range paths {
		for _, code := range codes {
			out = append(out, Check{Field: countryAbbreviation, Path: path, Query: code, WantHits: want})
		}
	}
	return out
}

// ScoringScenario proves that extra values which are duplicates, synonyms or
// prefixes of a stored value leave the score unchanged.
func ScoringScenario() Scenario {
	return Scenario{
		Name:        "scoring",
		Description: "multiple, duplicate and prefix abbreviation values do not affect scoring",
		Documents: []domain.Document{
			domain.NewDocument("1", countryAbbreviation, "NZL"),
			domain.NewDocument("2", countryAbbreviation, "NZL", "NZ"),
		},
		Checks: append(
			checks(2, []string{"nzl"}, domain.PathExact),
			checks(2, []string{"nzl", "nz"}, domain.PathNGram)...,
		),
	}
}

// SynonymScenario proves alpha-2 and alpha-3 country codes retrieve each
// other with the same score on both paths.
func SynonymScenario() Scenario {
	return Scenario{
		Name:        "synonyms",
		Description: "alpha-2 and alpha-3 country codes are synonyms",
		Documents: []domain.Document{
			domain.NewDocument("1", countryAbbreviation, "NZL"),
			domain.NewDocument("2", countryAbbreviation, "NZ"),
		},
		Checks: checks(2, []string{"nzl", "nz"}, domain.PathExact, domain.PathNGram),
	}
}

// EmptyValueScenario proves blank values are treated as an absent field.
func EmptyValueScenario() Scenario {
	return Scenario{
		Name:        "empty_values",
		Description: "empty and blank abbreviation values never match",
		Documents: []domain.Document{
			domain.NewDocument("1", countryAbbreviation, "NZL"),
			domain.NewDocument("2", countryAbbreviation, ""),
			domain.NewDocument("3", countryAbbreviation, "  "),
			domain.NewDocument("4", countryAbbreviation),
		},
		Checks: checks(1, []string{"nzl", "nz"}, domain.PathExact, domain.PathNGram),
	}
}

// DefaultScenarios returns every built-in scenario.
func DefaultScenarios() []Scenario {
	return []Scenario{ScoringScenario(), SynonymScenario(), EmptyValueScenario()}
}

// SelectScenarios returns the named scenarios from DefaultScenarios, in the
// order given. No names selects all of them.
func SelectScenarios(names ...string) ([]Scenario, error) {
	all := DefaultScenarios()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Scenario, len(all))
	for _, sc := range all {
		byName[sc.Name] = sc
	}

	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		out = append(out, sc)
	}
	return out, nil
}
