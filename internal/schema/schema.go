// Package schema builds the Elasticsearch index body for place documents.
//
// Administrative abbreviation fields (parent.<layer>_a) are indexed so that a
// document matches when any of its values, or a synonym of one, equals the
// query, and the score depends only on that fact. Two code values that are
// duplicates, synonyms or prefixes of one another never change the score.
package schema

import (
	"encoding/json"
	"fmt"
)

// Build returns the create-index request body.
func Build(opts Options) (map[string]any, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema options: %w", err)
	}

	settings := map[string]any{
		"number_of_shards":   opts.Shards,
		"number_of_replicas": opts.Replicas,
		"analysis":           Analysis(opts),
		"similarity":         Similarity(),
	}

	return map[string]any{
		"settings": settings,
		"mappings": map[string]any{
			"dynamic": "strict",
			"_meta": map[string]any{
				"mapping_version": MappingVersion,
			},
			"properties": map[string]any{
				parentField: map[string]any{
					"type":       "object",
					"dynamic":    "strict",
					"properties": ParentProperties(opts),
				},
			},
		},
	}, nil
}

// MustBuild is Build for options known to be valid, such as DefaultOptions.
func MustBuild(opts Options) map[string]any {
	body, err := Build(opts)
	if err != nil {
		panic(err)
	}
	return body
}

// JSON returns the body as indented JSON.
func JSON(opts Options) ([]byte, error) {
	body, err := Build(opts)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
