package contract

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/query"
)

// CheckResult is the outcome of one check, over every repetition.
type CheckResult struct {
	Check     Check       `json:"check"`
	Name      string      `json:"name"`
	Attempts  int         `json:"attempts"`
	TotalHits int64       `json:"total_hits"`
	Scores    [][]float64 `json:"scores"`
	Passed    bool        `json:"passed"`
	Failures  []string    `json:"failures,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func (r *CheckResult) fail(format string, args ...any) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// err summarises a failed result for Suite.Run.
func (r *CheckResult) err() error {
	if r.Passed {
		return nil
	}
	if r.Error != "" {
		return fmt.Errorf("%s: %s", r.Name, r.Error)
	}
	return fmt.Errorf("%s: %s", r.Name, strings.Join(r.Failures, "; "))
}

// runCheck searches repeat times and requires, on every attempt, the
// expected hit count and identical scores across all hits, and across
// attempts, identical per-document scores. A store error ends the check.
func runCheck(ctx context.Context, store Store, index string, check Check, repeat int) CheckResult {
	result := CheckResult{Check: check, Name: check.Name(), Passed: true}

	body, err := query.Abbreviation(check.Field, check.Path, check.Query)
	if err != nil {
		result.Passed = false
		result.Error = err.Error()
		return result
	}

	var first map[string]float64
	for attempt := range max(repeat, 1) {
		res, searchErr := store.Search(ctx, index, body)
		result.Attempts++
		if searchErr != nil {
			result.Passed = false
			result.Error = searchErr.Error()
			return result
		}

		result.TotalHits = domain.GetTotalHits(res.Hits)
		result.Scores = append(result.Scores, res.Hits.Scores())
		evaluateHits(&result, attempt, res.Hits)

		scores := scoresByID(res.Hits)
		if first == nil {
			first = scores
		} else if !maps.Equal(first, scores) {
			result.fail("attempt %d: scores %v differ from attempt 1 %v", attempt+1, scores, first)
		}
	}
	return result
}

func evaluateHits(result *CheckResult, attempt int, hits domain.Hits) {
	want := result.Check.WantHits
	if total := domain.GetTotalHits(hits); total != want {
		result.fail("attempt %d: matched %d documents, want %d", attempt+1, total, want)
	}
	if !hits.Total.Exact() {
		result.fail("attempt %d: total hits is a lower bound", attempt+1)
	}
	if int64(len(hits.Hits)) < want {
		result.fail("attempt %d: returned %d hits, want %d", attempt+1, len(hits.Hits), want)
	}
	for i := 1; i < len(hits.Hits); i++ {
		if hits.Hits[i].Score != hits.Hits[0].Score {
			result.fail("attempt %d: document %s scored %v, document %s scored %v",
				attempt+1, hits.Hits[i].ID, hits.Hits[i].Score, hits.Hits[0].ID, hits.Hits[0].Score)
		}
	}
}

func scoresByID(hits domain.Hits) map[string]float64 {
	scores := make(map[string]float64, len(hits.Hits))
	for _, hit := range hits.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores
}
