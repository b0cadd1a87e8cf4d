package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"codelens/internal/core/ports"
	"codelens/internal/ui/report/formats"
)

const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTSV      = "tsv"
)

// Write renders res in the named format.
func Write(w io.Writer, format string, res ports.AnalysisResult) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(BuildPayload(res))
	case FormatMarkdown:
		out, err := Markdown(res, time.Now().UTC())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatTSV:
		out, err := formats.NewTSVGenerator().GenerateFrequencies(res.Tokens.Frequencies)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatText, "":
		_, err := io.WriteString(w, Text(res))
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Markdown renders a full report including a Mermaid view of the tree.
func Markdown(res ports.AnalysisResult, generatedAt time.Time) (string, error) {
	opts := formats.MarkdownReportOptions{GeneratedAt: generatedAt}
	if res.AST != nil {
		diagram, err := formats.NewMermaidGenerator(res.AST).Generate()
		if err != nil {
			return "", err
		}
		opts.IncludeMermaid = true
		opts.MermaidDiagram = diagram
	}
	return formats.NewMarkdownGenerator().Generate(markdownData(res), opts)
}

func markdownData(res ports.AnalysisResult) formats.MarkdownReportData {
	collab := make([]string, 0, len(res.CollaboratorErrors))
	for _, ce := range res.CollaboratorErrors {
		collab = append(collab, fmt.Sprintf("%s (%s): %s", ce.Collaborator, ce.Code, ce.Message))
	}
	return formats.MarkdownReportData{
		RunID:           res.RunID,
		Path:            res.Path,
		Verdict:         string(res.Syntax.Verdict),
		StructureErrors: res.Syntax.Messages(),
		TokenCount:      res.Tokens.Total(),
		Frequencies:     res.Tokens.Frequencies,
		InvalidTokens:   res.Tokens.InvalidTokens,
		Complexity:      res.Complexity.String(),
		Summary:         res.Insight.Summary,
		Suggestions:     res.Insight.Suggestions,
		ExecutionStatus: string(res.Execution.Status),
		ExecutionOutput: res.Execution.Output,
		Artifact:        res.Visualization,
		Collaborator:    collab,
	}
}

// Text is the compact terminal rendering.
func Text(res ports.AnalysisResult) string {
	var b strings.Builder
	if res.Path != "" {
		fmt.Fprintf(&b, "== %s ==\n", res.Path)
	}
	fmt.Fprintf(&b, "Run:             %s\n", res.RunID)
	fmt.Fprintf(&b, "Tokens:          %d (%d distinct, %d invalid) in %.4fs\n",
		res.Tokens.Total(), len(res.Tokens.Frequencies), len(res.Tokens.InvalidTokens), round4(res.Tokens.Elapsed.Seconds()))
	if len(res.Tokens.InvalidTokens) > 0 {
		fmt.Fprintf(&b, "Invalid tokens:  %s\n", strings.Join(res.Tokens.InvalidTokens, " "))
	}
	fmt.Fprintf(&b, "Syntax:          %s in %.4fs\n", res.Syntax.Verdict, round4(res.Syntax.Elapsed.Seconds()))
	for _, msg := range res.Syntax.Messages() {
		fmt.Fprintf(&b, "  - %s\n", msg)
	}
	fmt.Fprintf(&b, "Complexity:      %s\n", res.Complexity)
	if res.AST != nil {
		fmt.Fprintf(&b, "AST nodes:       %d\n", res.AST.Len())
	}
	if res.Visualization != "" {
		fmt.Fprintf(&b, "AST artifact:    %s\n", res.Visualization)
	}
	fmt.Fprintf(&b, "Execution:       %s\n", res.Execution.Status)
	if out := strings.TrimRight(res.Execution.Output, "\n"); out != "" {
		for _, line := range strings.Split(out, "\n") {
			fmt.Fprintf(&b, "  | %s\n", line)
		}
	}
	if len(res.Insight.Summary) > 0 {
		b.WriteString("Summary:\n")
		for _, s := range res.Insight.Summary {
			fmt.Fprintf(&b, "  * %s\n", s)
		}
	}
	if len(res.Insight.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, s := range res.Insight.Suggestions {
			fmt.Fprintf(&b, "  * %s\n", s)
		}
	}
	for _, ce := range res.CollaboratorErrors {
		fmt.Fprintf(&b, "Warning: %s unavailable: %s\n", ce.Collaborator, ce.Message)
	}
	return b.String()
}
