package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codelens/internal/core/app"
	"codelens/internal/core/config"
	"codelens/internal/data/history"
)

func TestParseOptions_UIImpliesWatch(t *testing.T) {
	opts, err := parseOptions([]string{"-ui", "src"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.watch {
		t.Fatal("expected --ui to enable watch mode")
	}
	if len(opts.args) != 1 || opts.args[0] != "src" {
		t.Fatalf("unexpected args: %v", opts.args)
	}
}

func TestApplyModeOptions_RejectsCombinedModes(t *testing.T) {
	opts := &cliOptions{serve: true, watch: true}
	err := applyModeOptions(opts, config.Default())
	if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("expected combination error, got %v", err)
	}
}

func TestApplyModeOptions_RequiresInput(t *testing.T) {
	err := applyModeOptions(&cliOptions{}, config.Default())
	if err == nil || !strings.Contains(err.Error(), "no input") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestApplyModeOptions_ServeRejectsPositionalArgs(t *testing.T) {
	err := applyModeOptions(&cliOptions{serve: true, args: []string{"src"}}, config.Default())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyModeOptions_WatchOverridesPathsAndRejectsStdin(t *testing.T) {
	cfg := config.Default()
	if err := applyModeOptions(&cliOptions{watch: true, args: []string{"./a", "./b"}}, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Watch.Paths) != 2 || cfg.Watch.Paths[1] != "./b" {
		t.Fatalf("unexpected watch paths: %v", cfg.Watch.Paths)
	}

	if err := applyModeOptions(&cliOptions{watch: true, args: []string{"-"}}, config.Default()); err == nil {
		t.Fatal("expected stdin to be rejected in watch mode")
	}
}

func TestApplyModeOptions_FlagOverrides(t *testing.T) {
	cfg := config.Default()
	opts := &cliOptions{format: " JSON ", noExec: true, noViz: true, args: []string{"-"}}
	if err := applyModeOptions(opts, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Output.Format)
	}
	if cfg.Execution.IsEnabled() || cfg.Visualization.IsEnabled() {
		t.Fatal("expected execution and visualization to be disabled")
	}
}

func TestApplyModeOptions_HistoryEnablesStore(t *testing.T) {
	cfg := config.Default()
	if err := applyModeOptions(&cliOptions{history: 5}, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected --history to enable the run store")
	}
}

func TestParseInject(t *testing.T) {
	file, marker, err := parseInject("docs/README.md:ast")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "docs/README.md" || marker != "ast" {
		t.Fatalf("unexpected split: %q %q", file, marker)
	}

	for _, raw := range []string{"README.md", ":ast", "README.md:"} {
		if _, _, err := parseInject(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func newQuietApp(t *testing.T, format string) (*app.App, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	off := false
	cfg.Execution.Enabled = &off
	cfg.Visualization.Enabled = &off
	cfg.Output.Format = format
	cfg.Paths.ProjectRoot = dir

	paths, err := config.ResolvePaths(cfg, dir)
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}
	a, err := app.New(cfg, paths)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, dir
}

func TestRunAnalyze_Stdin(t *testing.T) {
	a, _ := newQuietApp(t, "json")
	var out bytes.Buffer

	code := runAnalyze(context.Background(), a, cliOptions{args: []string{"-"}}, strings.NewReader("int x = 5;"), &out)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), `"syntax_result": "Correct"`) {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), `"path": "<stdin>"`) {
		t.Fatalf("expected stdin path in output: %s", out.String())
	}
}

func TestRunAnalyze_DirectoryWithInject(t *testing.T) {
	a, dir := newQuietApp(t, "text")
	src := filepath.Join(dir, "Main.java")
	if err := os.WriteFile(src, []byte("public class Main\n{\nint x = 1;\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(dir, "README.md")
	if err := os.WriteFile(doc, []byte("# Doc\n<!-- codelens:ast:start -->\n<!-- codelens:ast:end -->\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	opts := cliOptions{args: []string{dir}, inject: doc + ":ast"}
	if code := runAnalyze(context.Background(), a, opts, strings.NewReader(""), &out); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Main.java") {
		t.Fatalf("expected report for Main.java, got: %s", out.String())
	}

	injected, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(injected), "```mermaid") || !strings.Contains(string(injected), "Class: Main") {
		t.Fatalf("expected mermaid tree in markdown, got: %s", injected)
	}
}

func TestRunAnalyze_NoMatchesFails(t *testing.T) {
	a, dir := newQuietApp(t, "text")
	var out bytes.Buffer
	if code := runAnalyze(context.Background(), a, cliOptions{args: []string{dir}}, strings.NewReader(""), &out); code != 1 {
		t.Fatalf("expected exit code 1 for an empty directory, got %d", code)
	}
}

func TestWriteHistory(t *testing.T) {
	var out bytes.Buffer
	writeHistory(&out, nil)
	if !strings.Contains(out.String(), "no runs recorded") {
		t.Fatalf("unexpected empty output: %s", out.String())
	}

	out.Reset()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	writeHistory(&out, []history.Run{
		{RunID: "a", Timestamp: ts, Verdict: "Correct", Complexity: "O(n)", ExecutionStatus: "Execution Success", SourceHash: "h1", Path: "Main.java"},
		{RunID: "b", Timestamp: ts, Verdict: "Incorrect", Complexity: "O(1)", ExecutionStatus: "Incorrect Syntax", SourceHash: "h2", InvalidTokenCount: 2},
	})
	text := out.String()
	for _, want := range []string{"History: 2 runs", "Main.java", "Correct: 1 | Incorrect: 1", "Distinct inputs: 2", "O(1)=1, O(n)=1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig("", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Execution.DefaultEntryPoint != "Main" {
		t.Fatalf("expected default entry point, got %q", cfg.Execution.DefaultEntryPoint)
	}
}

func TestLoadConfig_PrefersProjectFile(t *testing.T) {
	dir := t.TempDir()
	body := "version = 1\n[output]\nformat = \"markdown\"\n"
	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig("", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "markdown" {
		t.Fatalf("expected markdown format, got %q", cfg.Output.Format)
	}
}
