package contract

import (
	"fmt"
	"strings"
	"time"
)

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name       string        `json:"name"`
	Index      string        `json:"index,omitempty"`
	Passed     bool          `json:"passed"`
	DurationMS int64         `json:"duration_ms"`
	Checks     []CheckResult `json:"checks"`
	// Errors holds setup, action and cleanup failures.
	Errors []string `json:"errors,omitempty"`
}

// Report is the outcome of a verification run.
type Report struct {
	Mode           string           `json:"mode"`
	MappingVersion string           `json:"mapping_version"`
	StartedAt      time.Time        `json:"started_at"`
	DurationMS     int64            `json:"duration_ms"`
	Scenarios      []ScenarioResult `json:"scenarios"`
}

// Passed reports whether every scenario passed. An empty report has not
// proven anything and does not pass.
func (r *Report) Passed() bool {
	if r == nil || len(r.Scenarios) == 0 {
		return false
	}
	for _, sc := range r.Scenarios {
		if !sc.Passed {
			return false
		}
	}
	return true
}

// Failures lists every failure as "scenario: detail".
func (r *Report) Failures() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, sc := range r.Scenarios {
		for _, e := range sc.Errors {
			out = append(out, sc.Name+": "+e)
		}
		for _, check := range sc.Checks {
			if check.Error != "" {
				out = append(out, fmt.Sprintf("%s: %s: %s", sc.Name, check.Name, check.Error))
			}
			for _, f := range check.Failures {
				out = append(out, fmt.Sprintf("%s: %s: %s", sc.Name, check.Name, f))
			}
		}
	}
	return out
}

// Summary renders a short human readable report.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, sc := range r.Scenarios {
		status := "PASS"
		if !sc.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s %s (%d checks, %dms)\n", status, sc.Name, len(sc.Checks), sc.DurationMS)
		for _, check := range sc.Checks {
			mark := "ok"
			if !check.Passed {
				mark = "FAILED"
			}
			fmt.Fprintf(&b, "    %-6s %s: %d hits %v\n", mark, check.Name, check.TotalHits, lastScores(check))
		}
	}
	for _, f := range r.Failures() {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return b.String()
}

func lastScores(check CheckResult) []float64 {
	if len(check.Scores) == 0 {
		return nil
	}
	return check.Scores[len(check.Scores)-1]
}
