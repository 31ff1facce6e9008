package schema

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

//go:embed synonyms/country_codes.txt
var countryCodeRules string

// SynonymRule is one line of a Solr synonym file. An equivalence rule has no
// Outputs and maps every input to every other input. An explicit rule
// ("a, b => c") replaces any of its inputs with the outputs.
type SynonymRule struct {
	Inputs  []string
	Outputs []string
}

// Equivalence reports whether the rule has no explicit outputs.
func (r SynonymRule) Equivalence() bool {
	return len(r.Outputs) == 0
}

// String renders the rule in Solr format.
func (r SynonymRule) String() string {
	if r.Equivalence() {
		return strings.Join(r.Inputs, ", ")
	}
	return strings.Join(r.Inputs, ", ") + " => " + strings.Join(r.Outputs, ", ")
}

// SynonymSet is an immutable, ordered list of synonym rules.
type SynonymSet struct {
	rules []SynonymRule
	index map[string][]int
}

var (
	countryCodesOnce sync.Once
	countryCodes     *SynonymSet
)

// CountryCodeSynonyms returns the ISO 3166-1 alpha-2 <-> alpha-3 table.
func CountryCodeSynonyms() *SynonymSet {
	countryCodesOnce.Do(func() {
		set, err := ParseSynonyms(strings.NewReader(countryCodeRules))
		if err != nil {
			panic(fmt.Sprintf("embedded country code synonyms: %v", err))
		}
		countryCodes = set
	})
	return countryCodes
}

// LoadSynonymsFile parses a Solr synonym file from disk.
func LoadSynonymsFile(path string) (*SynonymSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open synonyms file: %w", err)
	}
	defer f.Close()

	set, err := ParseSynonyms(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseSynonyms reads Solr-format rules. Blank lines and lines starting with
// '#' are skipped. Terms are lowercased and trimmed so they line up with the
// filters that run before synonym expansion.
func ParseSynonyms(r io.Reader) (*SynonymSet, error) {
	var rules []SynonymRule

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}

	return newSynonymSet(rules), nil
}

func parseRule(line string) (SynonymRule, error) {
	lhs, rhs, explicit := strings.Cut(line, "=>")
	inputs := splitTerms(lhs)
	if len(inputs) == 0 {
		return SynonymRule{}, fmt.Errorf("rule %q has no input terms", line)
	}
	if !explicit {
		if len(inputs) < 2 {
			return SynonymRule{}, fmt.Errorf("equivalence %q needs at least two terms", line)
		}
		return SynonymRule{Inputs: inputs}, nil
	}

	outputs := splitTerms(rhs)
	if len(outputs) == 0 {
		return SynonymRule{}, fmt.Errorf("rule %q has no output terms", line)
	}
	return SynonymRule{Inputs: inputs, Outputs: outputs}, nil
}

func splitTerms(s string) []string {
	var terms []string
	for part := range strings.SplitSeq(s, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" && !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	}
	return terms
}

func newSynonymSet(rules []SynonymRule) *SynonymSet {
	set := &SynonymSet{rules: rules, index: make(map[string][]int)}
	for i, rule := range rules {
		for _, in := range rule.Inputs {
			set.index[in] = append(set.index[in], i)
		}
	}
	return set
}

// Len returns the number of rules.
func (s *SynonymSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules renders every rule in Solr format, in file order.
func (s *SynonymSet) Rules() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.rules))
	for i, rule := range s.rules {
		out[i] = rule.String()
	}
	return out
}

// Expand returns the terms emitted in place of term, in rule order. Rules are
// not applied transitively. A term no rule mentions expands to itself.
func (s *SynonymSet) Expand(term string) []string {
	if s == nil {
		return []string{term}
	}
	ids, ok := s.index[term]
	if !ok {
		return []string{term}
	}

	var out []string
	add := func(t string) {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, id := range ids {
		rule := s.rules[id]
		if rule.Equivalence() {
			add(term)
			for _, t := range rule.Inputs {
				add(t)
			}
			continue
		}
		for _, t := range rule.Outputs {
			add(t)
		}
	}
	return out
}

// Merge returns a new set holding s's rules followed by other's.
func (s *SynonymSet) Merge(other *SynonymSet) *SynonymSet {
	var rules []SynonymRule
	if s != nil {
		rules = append(rules, s.rules...)
	}
	if other != nil {
		rules = append(rules, other.rules...)
	}
	return newSynonymSet(rules)
}
