package formats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MarkdownReportData is the presentation-neutral view of one analysis.
type MarkdownReportData struct {
	RunID           string
	Path            string
	Verdict         string
	StructureErrors []string
	TokenCount      int
	Frequencies     map[string]int
	InvalidTokens   []string
	Complexity      string
	Summary         []string
	Suggestions     []string
	ExecutionStatus string
	ExecutionOutput string
	Artifact        string
	Collaborator    []string
}

type MarkdownReportOptions struct {
	GeneratedAt    time.Time
	IncludeMermaid bool
	MermaidDiagram string
	TopTokens      int
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	if opts.TopTokens <= 0 {
		opts.TopTokens = 10
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Source Analysis Report\n")
	b.WriteString("run_id: " + nonEmpty(data.RunID, "unknown") + "\n")
	b.WriteString("source: " + nonEmpty(data.Path, "stdin") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Analysis Report\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Syntax | %s |\n", data.Verdict)
	fmt.Fprintf(&b, "| Tokens | %d (%d distinct) |\n", data.TokenCount, len(data.Frequencies))
	fmt.Fprintf(&b, "| Invalid tokens | %d |\n", len(data.InvalidTokens))
	fmt.Fprintf(&b, "| Time complexity | %s |\n", markdownCell(data.Complexity))
	fmt.Fprintf(&b, "| Execution | %s |\n", nonEmpty(data.ExecutionStatus, "n/a"))
	if data.Artifact != "" {
		fmt.Fprintf(&b, "| AST artifact | `%s` |\n", data.Artifact)
	}
	b.WriteString("\n")

	writeList(&b, "Structure Errors", data.StructureErrors, "No structural problems found.")
	writeList(&b, "Summary", data.Summary, "Nothing to summarize.")
	writeList(&b, "Suggestions", data.Suggestions, "No suggestions.")

	b.WriteString("## Tokens\n\n")
	top := topTokens(data.Frequencies, opts.TopTokens)
	if len(top) == 0 {
		b.WriteString("_No tokens._\n\n")
	} else {
		b.WriteString("| Token | Count |\n|---|---|\n")
		for _, tok := range top {
			fmt.Fprintf(&b, "| `%s` | %d |\n", markdownCell(tok), data.Frequencies[tok])
		}
		b.WriteString("\n")
	}
	if len(data.InvalidTokens) > 0 {
		b.WriteString("Invalid: ")
		quoted := make([]string, 0, len(data.InvalidTokens))
		for _, tok := range data.InvalidTokens {
			quoted = append(quoted, "`"+markdownCell(tok)+"`")
		}
		b.WriteString(strings.Join(quoted, ", ") + "\n\n")
	}

	if data.ExecutionOutput != "" {
		b.WriteString("## Execution Output\n\n```text\n")
		b.WriteString(strings.TrimRight(data.ExecutionOutput, "\n"))
		b.WriteString("\n```\n\n")
	}

	if opts.IncludeMermaid && opts.MermaidDiagram != "" {
		b.WriteString("## Syntax Tree\n\n```mermaid\n")
		b.WriteString(strings.TrimRight(opts.MermaidDiagram, "\n"))
		b.WriteString("\n```\n\n")
	}

	if len(data.Collaborator) > 0 {
		writeList(&b, "Collaborator Errors", data.Collaborator, "")
	}
	return b.String(), nil
}

func writeList(b *strings.Builder, title string, items []string, empty string) {
	b.WriteString("## " + title + "\n\n")
	if len(items) == 0 {
		b.WriteString("_" + empty + "_\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

func topTokens(freq map[string]int, n int) []string {
	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return tokens
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
