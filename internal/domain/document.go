// Package domain holds the documents, paths and search results place-schema
// works with.
package domain

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

// Parent maps a parent field name, such as "country_a", to its values in
// order. Values need not be unique.
type Parent map[string][]string

// Document is the indexed shape: {"parent": {"country_a": ["NZL", "NZ"]}}.
type Document struct {
	ID     string `json:"-"`
	Parent Parent `json:"parent"`
}

// NewDocument returns a document with a single parent field set.
func NewDocument(id, field string, values ...string) Document {
	if values == nil {
		values = []string{}
	}
	return Document{ID: id, Parent: Parent{field: values}}
}

// Path selects which sub-field of an abbreviation field a query targets.
type Path string

const (
	PathExact Path = "exact"
	PathNGram Path = "ngram"
)

// ParsePath accepts "exact" or "ngram". Empty means exact.
func ParsePath(s string) (Path, error) {
	switch Path(s) {
	case "", PathExact:
		return PathExact, nil
	case PathNGram:
		return PathNGram, nil
	default:
		return "", fmt.Errorf("unknown path %q: want exact or ngram", s)
	}
}

// Field returns the full path of field on this sub-field.
func (p Path) Field(field string) string {
	if p == PathNGram {
		return schema.NGramPath(field)
	}
	return schema.FieldPath(field)
}
