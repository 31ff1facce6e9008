// Package query builds the search bodies used against abbreviation fields.
package query

import (
	"errors"
	"strings"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
)

// ErrEmptyCode is returned for a blank query code.
var ErrEmptyCode = errors.New("query code is empty")

// Match returns {"query": {"match": {path: {"query": text}}}}.
func Match(path, text string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				path: map[string]any{
					"query": text,
				},
			},
		},
	}
}

// Abbreviation builds a match query for code on the exact or ngram sub-field
// of an abbreviation field such as "country_a".
func Abbreviation(field string, path domain.Path, code string) (map[string]any, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}
	return Match(path.Field(field), code), nil
}
