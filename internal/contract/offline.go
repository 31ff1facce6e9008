package contract

import (
	"slices"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
)

// VerifyOffline evaluates scenarios with the Go analyzer models instead of a
// cluster. A hit's score is the number of distinct query terms it matched,
// and hits must match the same terms to count as equally scored.
func VerifyOffline(opts schema.Options, scenarios []Scenario) *Report {
	exact, ngram := analysis.ForOptions(opts)
	report := &Report{
		Mode:           "offline",
		MappingVersion: schema.MappingVersion,
		StartedAt:      time.Now().UTC(),
	}

	for _, sc := range scenarios {
		start := time.Now()
		result := ScenarioResult{Name: sc.Name, Passed: true}
		for _, check := range sc.Checks {
			fieldAnalyzer := exact
			if check.Path == domain.PathNGram {
				fieldAnalyzer = ngram
			}
			res := offlineCheck(sc.Documents, check, fieldAnalyzer, exact)
			result.Checks = append(result.Checks, res)
			result.Passed = result.Passed && res.Passed
		}
		result.DurationMS = time.Since(start).Milliseconds()
		report.Scenarios = append(report.Scenarios, result)
	}

	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	return report
}

func offlineCheck(docs []domain.Document, check Check, field, search *analysis.Analyzer) CheckResult {
	result := CheckResult{Check: check, Name: check.Name(), Attempts: 1, Passed: true}
	queryTokens := search.Analyze([]string{check.Query})

	var (
		scores   []float64
		firstKey string
		firstID  string
		seen     bool
	)
	for _, doc := range docs {
		docTokens := field.Analyze(doc.Parent[check.Field])
		if !analysis.Matches(docTokens, queryTokens) {
			continue
		}
		matched := analysis.MatchedTerms(docTokens, queryTokens)
		scores = append(scores, float64(len(matched)))

		key := strings.Join(matched, ",")
		if !seen {
			firstID, firstKey, seen = doc.ID, key, true
		} else if key != firstKey {
			result.fail("document %s matched [%s], document %s matched [%s]", doc.ID, key, firstID, firstKey)
		}
	}

	result.TotalHits = int64(len(scores))
	result.Scores = [][]float64{scores}
	if result.TotalHits != check.WantHits {
		result.fail("matched %d documents, want %d", result.TotalHits, check.WantHits)
	}
	if slices.ContainsFunc(scores, func(s float64) bool { return s != scores[0] }) {
		result.fail("scores differ: %v", scores)
	}
	return result
}
