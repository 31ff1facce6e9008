package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/place-schema/internal/analysis"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// newTable prints heading on its own line and returns an empty table.
func newTable(w io.Writer, heading string) table.Writer {
	fmt.Fprintln(w, heading)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderTokens(w io.Writer, title string, tokens []analysis.Token) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Position", "Term"})
	for _, tok := range tokens {
		t.AppendRow(table.Row{tok.Position, tok.Term})
	}
	t.Render()
}

func renderAnalysis(w io.Writer, result *service.AnalyzeResult) {
	renderTokens(w, fmt.Sprintf("%s (%s)", result.Field, result.Analyzer), result.Tokens)
	if result.Remote == nil {
		return
	}

	renderTokens(w, "index "+result.Remote.Index, result.Remote.Tokens)
	if !result.Remote.Drift {
		fmt.Fprintln(w, text.FgGreen.Sprint("local and index analyzers agree"))
		return
	}
	fmt.Fprintln(w, text.FgRed.Sprint("analyzer drift"))
	fmt.Fprintf(w, "  only local: %s\n", strings.Join(result.Remote.Missing, ", "))
	fmt.Fprintf(w, "  only index: %s\n", strings.Join(result.Remote.Extra, ", "))
}

func renderReport(w io.Writer, report *contract.Report) {
	t := newTable(w, fmt.Sprintf("contract verification (%s, mapping %s)", report.Mode, report.MappingVersion))
	t.AppendHeader(table.Row{"Scenario", "Check", "Hits", "Scores", "Result"})
	for _, sc := range report.Scenarios {
		for _, check := range sc.Checks {
			t.AppendRow(table.Row{sc.Name, check.Name, check.TotalHits, lastScores(check), status(check.Passed)})
		}
		if len(sc.Checks) == 0 {
			t.AppendRow(table.Row{sc.Name, "-", "-", "-", status(sc.Passed)})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	t.Render()

	for _, failure := range report.Failures() {
		fmt.Fprintf(w, "  - %s\n", failure)
	}
	if report.Passed() {
		fmt.Fprintln(w, text.FgGreen.Sprint("PASS"))
	} else {
		fmt.Fprintln(w, text.FgRed.Sprint("FAIL"))
	}
}

func lastScores(check contract.CheckResult) string {
	if len(check.Scores) == 0 {
		return "-"
	}
	return fmt.Sprint(check.Scores[len(check.Scores)-1])
}

func status(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAILED"
}
