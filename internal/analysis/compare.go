package analysis

import "slices"

// Terms returns the sorted, distinct terms of tokens.
func Terms(tokens []Token) []string {
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		terms = append(terms, t.Term)
	}
	slices.Sort(terms)
	return slices.Compact(terms)
}

// Matches reports whether a match query analyzed to query hits a field
// analyzed to doc.
func Matches(doc, query []Token) bool {
	docTerms := Terms(doc)
	for _, t := range query {
		if _, found := slices.BinarySearch(docTerms, t.Term); found {
			return true
		}
	}
	return false
}

// MatchedTerms returns the distinct query terms present in doc. Under the
// presence similarity, documents with equal matched terms score the same.
func MatchedTerms(doc, query []Token) []string {
	docTerms := Terms(doc)
	var matched []string
	for _, term := range Terms(query) {
		if _, found := slices.BinarySearch(docTerms, term); found {
			matched = append(matched, term)
		}
	}
	return matched
}

// Diff compares two term lists. missing holds terms only in local, extra
// holds terms only in remote.
func Diff(local, remote []string) (missing, extra []string) {
	l := slices.Compact(slices.Sorted(slices.Values(local)))
	r := slices.Compact(slices.Sorted(slices.Values(remote)))

	for _, term := range l {
		if _, found := slices.BinarySearch(r, term); !found {
			missing = append(missing, term)
		}
	}
	for _, term := range r {
		if _, found := slices.BinarySearch(l, term); !found {
			extra = append(extra, term)
		}
	}
	return missing, extra
}
