package schema

// Names of the analysis components registered in the index settings.
const (
	AnalyzerExact  = "abbreviation_exact"
	AnalyzerNGram  = "abbreviation_ngram"
	SimilarityName = "abbreviation_presence"

	charFilterPunctuation = "abbreviation_punctuation"
	filterSynonyms        = "abbreviation_synonyms"
	filterUnique          = "abbreviation_unique"
	filterEdgeNGram       = "abbreviation_edge_ngram"
	filterNotEmpty        = "abbreviation_not_empty"
)

// Punctuation lists the characters stripped from abbreviation values before
// tokenization, so "N.Z." and "NZ" index identically.
var Punctuation = []string{".", ",", "'", "`", "(", ")"}

func punctuationMappings() []string {
	mappings := make([]string, len(Punctuation))
	for i, p := range Punctuation {
		mappings[i] = p + "=>"
	}
	return mappings
}

// Analysis returns the analysis section of the index settings.
//
// Both analyzers keep every array element whole (keyword tokenizer), then
// lowercase, trim, expand synonyms and drop empty tokens. The ngram analyzer
// additionally emits edge n-grams of every expanded token. Duplicates at the
// same position are removed so a value and its synonym never add term
// frequency.
func Analysis(opts Options) map[string]any {
	synonyms := opts.Synonyms.Rules()
	if synonyms == nil {
		synonyms = []string{}
	}

	return map[string]any{
		"char_filter": map[string]any{
			charFilterPunctuation: map[string]any{
				"type":     "mapping",
				"mappings": punctuationMappings(),
			},
		},
		"filter": map[string]any{
			filterSynonyms: map[string]any{
				"type":     "synonym",
				"synonyms": synonyms,
				"expand":   true,
				"lenient":  true,
			},
			filterUnique: map[string]any{
				"type":                  "unique",
				"only_on_same_position": true,
			},
			filterEdgeNGram: map[string]any{
				"type":              "edge_ngram",
				"min_gram":          opts.NGramMin,
				"max_gram":          opts.NGramMax,
				"preserve_original": true,
			},
			filterNotEmpty: map[string]any{
				"type": "length",
				"min":  1,
			},
		},
		"analyzer": map[string]any{
			AnalyzerExact: map[string]any{
				"type":                   "custom",
				"char_filter":            []string{charFilterPunctuation},
				"tokenizer":              "keyword",
				"filter":                 []string{"lowercase", "trim", filterSynonyms, filterUnique, filterNotEmpty},
				"position_increment_gap": opts.PositionIncrementGap,
			},
			AnalyzerNGram: map[string]any{
				"type":                   "custom",
				"char_filter":            []string{charFilterPunctuation},
				"tokenizer":              "keyword",
				"filter":                 []string{"lowercase", "trim", filterSynonyms, filterEdgeNGram, filterUnique, filterNotEmpty},
				"position_increment_gap": opts.PositionIncrementGap,
			},
		},
	}
}

// Similarity returns a BM25 variant with k1 = 0 and b = 0. Scores reduce to
// idf, so neither term frequency nor field length moves a match.
func Similarity() map[string]any {
	return map[string]any{
		SimilarityName: map[string]any{
			"type": "BM25",
			"k1":   0,
			"b":    0,
		},
	}
}
