package schema

// AbbreviationMapping maps an abbreviation field: an exact text field plus an
// ngram sub-field, both on the presence similarity without norms.
func AbbreviationMapping(opts Options) map[string]any {
	return map[string]any{
		"type":                   "text",
		"analyzer":               AnalyzerExact,
		"search_analyzer":        AnalyzerExact,
		"similarity":             SimilarityName,
		"norms":                  false,
		"position_increment_gap": opts.PositionIncrementGap,
		"fields": map[string]any{
			ngramSubField: map[string]any{
				"type":                   "text",
				"analyzer":               AnalyzerNGram,
				"search_analyzer":        AnalyzerExact,
				"similarity":             SimilarityName,
				"norms":                  false,
				"position_increment_gap": opts.PositionIncrementGap,
			},
		},
	}
}

func nameMapping() map[string]any {
	return map[string]any{
		"type":     "text",
		"analyzer": "standard",
	}
}

func keywordMapping() map[string]any {
	return map[string]any{
		"type":         "keyword",
		"ignore_above": 256,
	}
}

// ParentProperties returns the properties of the parent object: name,
// abbreviation, id and source fields for every layer.
func ParentProperties(opts Options) map[string]any {
	layers := opts.Layers
	if len(layers) == 0 {
		layers = AdminLayers
	}

	props := make(map[string]any, len(layers)*4)
	for _, layer := range layers {
		props[layer] = nameMapping()
		props[AbbreviationField(layer)] = AbbreviationMapping(opts)
		props[layer+idSuffix] = keywordMapping()
		props[layer+sourceSuffix] = keywordMapping()
	}
	return props
}
