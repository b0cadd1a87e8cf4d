package cli

import (
	"fmt"
	"strings"

	"codelens/internal/data/history"
	"codelens/internal/shared/util"
)

const maxOutputLines = 12

func renderHelp(m model) string {
	keys := "Keys: / filter | enter details | s history stats | o open source | q quit"
	if m.mode == panelDetails {
		keys = "Keys: esc back | s history stats | o open source | q quit"
	}
	return statusStyle.Render(keys)
}

func renderDetails(m model) string {
	e, ok := m.entries[m.selected]
	if !ok {
		return statusStyle.Render("No file selected.")
	}
	if e.failure != "" {
		return errorStyle.Render(fmt.Sprintf("%s could not be analyzed: %s", m.selected, e.failure))
	}
	res := e.result

	verdict := successStyle.Render(string(res.Syntax.Verdict))
	if len(res.Syntax.Errors) > 0 {
		verdict = errorStyle.Render(string(res.Syntax.Verdict))
	}

	lines := []string{
		fmt.Sprintf("File: %s", res.Path),
		fmt.Sprintf("  Syntax: %s", verdict),
	}
	for _, msg := range res.Syntax.Messages() {
		lines = append(lines, "    - "+msg)
	}
	lines = append(lines,
		fmt.Sprintf("  Tokens: %d (%d distinct)", res.Tokens.Total(), len(res.Tokens.Frequencies)),
	)
	if len(res.Tokens.InvalidTokens) > 0 {
		lines = append(lines, warnStyle.Render("  Invalid tokens: "+strings.Join(res.Tokens.InvalidTokens, " ")))
	}
	lines = append(lines,
		fmt.Sprintf("  Time complexity: %s", res.Complexity),
		fmt.Sprintf("  Execution: %s", res.Execution.Status),
	)
	if out := strings.TrimRight(res.Execution.Output, "\n"); out != "" {
		outLines := strings.Split(out, "\n")
		if len(outLines) > maxOutputLines {
			outLines = append(outLines[:maxOutputLines], fmt.Sprintf("... %d more lines", len(outLines)-maxOutputLines))
		}
		for _, l := range outLines {
			lines = append(lines, "    | "+l)
		}
	}
	if res.Visualization != "" {
		lines = append(lines, fmt.Sprintf("  Syntax tree: %s", res.Visualization))
	}
	if len(res.Insight.Summary) > 0 {
		lines = append(lines, "  Summary:")
		for _, s := range res.Insight.Summary {
			lines = append(lines, "    - "+s)
		}
	}
	if len(res.Insight.Suggestions) > 0 {
		lines = append(lines, "  Suggestions:")
		for _, s := range res.Insight.Suggestions {
			lines = append(lines, "    - "+s)
		}
	}
	for _, ce := range res.CollaboratorErrors {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("  %s unavailable: %s", ce.Collaborator, ce.Message)))
	}
	return strings.Join(lines, "\n")
}

func renderStatsOverlay(stats *history.Stats) string {
	if stats == nil || stats.Runs == 0 {
		return statusStyle.Render("History stats unavailable (enable [history] to record runs).")
	}
	counts := func(m map[string]int) string {
		parts := make([]string, 0, len(m))
		for _, k := range util.SortedStringKeys(m) {
			parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
		}
		return strings.Join(parts, ", ")
	}
	return strings.Join([]string{
		"History",
		fmt.Sprintf("  Runs: %d | Correct: %d | Incorrect: %d | Distinct inputs: %d",
			stats.Runs, stats.Correct, stats.Incorrect, stats.DistinctInputs),
		fmt.Sprintf("  Avg invalid tokens: %.2f | Avg duration: %.2fms", stats.AvgInvalid, stats.AvgDurationMS),
		fmt.Sprintf("  Complexity: %s", counts(stats.ByComplexity)),
		fmt.Sprintf("  Execution: %s", counts(stats.ByExecution)),
	}, "\n")
}
