package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/engine/complexity"
	"codelens/internal/engine/insight"
	"codelens/internal/engine/syntax"
)

func sampleResult(path string, verdict syntax.Verdict) ports.AnalysisResult {
	return ports.AnalysisResult{
		Path:       path,
		Syntax:     syntax.Result{Verdict: verdict},
		Complexity: complexity.Label{Class: complexity.Constant},
		Execution:  ports.ExecutionOutcome{Status: ports.StatusSkipped},
		Insight:    insight.Insight{Summary: []string{insight.SentencePrints}},
	}
}

func TestModel_UpdateListsResultsSortedByPath(t *testing.T) {
	m := initialModel(nil)

	updated, _ := m.Update(updateMsg{
		results: []ports.AnalysisResult{
			sampleResult("b/B.java", syntax.Incorrect),
			sampleResult("a/A.java", syntax.Correct),
		},
		failures: map[string]string{"c/C.java": "permission denied"},
	})
	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}

	items := state.resultList.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].(item).title != "a/A.java" || items[2].(item).title != "c/C.java" {
		t.Fatalf("unexpected order: %v", items)
	}
	if !strings.HasPrefix(items[2].(item).desc, "Failed: ") {
		t.Fatalf("expected failure description, got %q", items[2].(item).desc)
	}

	correct, incorrect, failed := state.counts()
	if correct != 1 || incorrect != 1 || failed != 1 {
		t.Fatalf("unexpected counts: %d %d %d", correct, incorrect, failed)
	}
	if !strings.Contains(state.View(), "1 incorrect") {
		t.Fatal("expected header to report the incorrect file")
	}
}

func TestModel_ReanalysisReplacesAndRemovalDrops(t *testing.T) {
	m := initialModel(nil)
	updated, _ := m.Update(updateMsg{results: []ports.AnalysisResult{sampleResult("A.java", syntax.Incorrect)}})
	state := updated.(model)

	updated, _ = state.Update(updateMsg{results: []ports.AnalysisResult{sampleResult("A.java", syntax.Correct)}})
	state = updated.(model)
	if len(state.entries) != 1 || state.entries["A.java"].result.Syntax.Verdict != syntax.Correct {
		t.Fatalf("expected re-analysis to replace the entry, got %+v", state.entries)
	}

	updated, _ = state.Update(updateMsg{removed: []string{"A.java", "missing.java"}})
	state = updated.(model)
	if len(state.entries) != 0 || state.removed != 1 {
		t.Fatalf("expected one tracked removal, entries=%d removed=%d", len(state.entries), state.removed)
	}
}

func TestModel_DetailsAndStatsToggle(t *testing.T) {
	stats := history.BuildStats([]history.Run{{Verdict: "Correct", Complexity: "O(1)", SourceHash: "x"}})
	m := initialModel(&stats)
	updated, _ := m.Update(updateMsg{results: []ports.AnalysisResult{sampleResult("A.java", syntax.Correct)}})
	state := updated.(model)

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state = updated.(model)
	if state.mode != panelDetails || state.selected != "A.java" {
		t.Fatalf("expected details for A.java, mode=%v selected=%q", state.mode, state.selected)
	}
	if !strings.Contains(state.View(), insight.SentencePrints) {
		t.Fatal("expected summary in detail view")
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	state = updated.(model)
	if !state.showStats || !strings.Contains(state.View(), "Runs: 1") {
		t.Fatal("expected history stats overlay")
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state = updated.(model)
	if state.mode != panelResults || state.selected != "" {
		t.Fatal("expected esc to return to the result list")
	}
}

func TestModel_DetailsCloseWhenFileRemoved(t *testing.T) {
	m := initialModel(nil)
	updated, _ := m.Update(updateMsg{results: []ports.AnalysisResult{sampleResult("A.java", syntax.Correct)}})
	updated, _ = updated.(model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ = updated.(model).Update(updateMsg{removed: []string{"A.java"}})

	state := updated.(model)
	if state.mode != panelResults {
		t.Fatal("expected detail panel to close when its file disappears")
	}
}

func TestRenderStatsOverlay_Empty(t *testing.T) {
	if !strings.Contains(renderStatsOverlay(nil), "unavailable") {
		t.Fatal("expected unavailable hint without stats")
	}
}
