// Package analysis reproduces the abbreviation analyzers in Go so token
// streams can be inspected without a cluster and compared with _analyze.
package analysis

import (
	"slices"
	"strings"

	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

const defaultPositionGap = 100

// Token is one emitted term and its position.
type Token struct {
	Term     string `json:"term"`
	Position int    `json:"position"`
}

// Analyzer mirrors one of the schema's custom analyzers.
type Analyzer struct {
	name     string
	synonyms *schema.SynonymSet
	gap      int

	edgeGrams bool
	minGram   int
	maxGram   int
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithPositionIncrementGap sets the gap inserted between array values.
func WithPositionIncrementGap(gap int) Option {
	return func(a *Analyzer) {
		a.gap = gap
	}
}

// NewExact mirrors the exact analyzer.
func NewExact(synonyms *schema.SynonymSet, opts ...Option) *Analyzer {
	a := &Analyzer{name: schema.AnalyzerExact, synonyms: synonyms, gap: defaultPositionGap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewEdgeGram mirrors the ngram analyzer.
func NewEdgeGram(synonyms *schema.SynonymSet, minGram, maxGram int, opts ...Option) *Analyzer {
	a := NewExact(synonyms, opts...)
	a.name = schema.AnalyzerNGram
	a.edgeGrams = true
	a.minGram = minGram
	a.maxGram = maxGram
	return a
}

// ForOptions returns the exact and ngram analyzers a schema built from opts
// registers.
func ForOptions(opts schema.Options) (exact, ngram *Analyzer) {
	gap := WithPositionIncrementGap(opts.PositionIncrementGap)
	return NewExact(opts.Synonyms, gap), NewEdgeGram(opts.Synonyms, opts.NGramMin, opts.NGramMax, gap)
}

// Name returns the analyzer name registered in the index settings.
func (a *Analyzer) Name() string {
	return a.name
}

// Analyze tokenizes values as one multi-valued field, with consecutive
// values separated by the position increment gap. Only the terms are
// expected to agree with the cluster's _analyze output; positions after a
// value that produced no tokens may differ.
func (a *Analyzer) Analyze(values []string) []Token {
	var tokens []Token
	pos := -1
	for i, value := range values {
		if i > 0 {
			pos += a.gap
		}
		pos++
		for _, term := range a.terms(value) {
			tokens = append(tokens, Token{Term: term, Position: pos})
		}
	}
	return tokens
}

// terms returns the de-duplicated terms one value produces at its position.
func (a *Analyzer) terms(value string) []string {
	term := strings.TrimSpace(strings.ToLower(stripPunctuation(value)))

	expanded := a.synonyms.Expand(term)
	if a.edgeGrams {
		var grams []string
		for _, t := range expanded {
			grams = append(grams, edgeNGrams(t, a.minGram, a.maxGram)...)
		}
		expanded = grams
	}

	out := make([]string, 0, len(expanded))
	for _, t := range expanded {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func stripPunctuation(s string) string {
	for _, p := range schema.Punctuation {
		s = strings.ReplaceAll(s, p, "")
	}
	return s
}

// edgeNGrams returns the prefixes of term from minGram to maxGram runes. The
// whole term is kept when it falls outside that range.
func edgeNGrams(term string, minGram, maxGram int) []string {
	runes := []rune(term)
	var grams []string
	for n := minGram; n <= maxGram && n <= len(runes); n++ {
		grams = append(grams, string(runes[:n]))
	}
	if len(runes) < minGram || len(runes) > maxGram {
		grams = append(grams, term)
	}
	return grams
}
