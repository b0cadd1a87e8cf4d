// Package report renders analysis results for terminals, files and HTTP
// clients.
package report

import (
	"math"

	"codelens/internal/core/ports"
	"codelens/internal/engine/ast"
)

// Payload is the wire shape of one analysis. Field names follow the
// compile_and_run response contract.
type Payload struct {
	RunID              string                    `json:"run_id"`
	Path               string                    `json:"path,omitempty"`
	ExecutionStatus    string                    `json:"execution_status"`
	ExecutionOutput    string                    `json:"execution_output"`
	Lexical            map[string]int            `json:"lexical"`
	InvalidTokens      []string                  `json:"invalid_tokens"`
	LexicalTime        float64                   `json:"lexical_time"`
	SyntaxResult       string                    `json:"syntax_result"`
	SyntaxErrors       []string                  `json:"syntax_errors"`
	SyntaxTime         float64                   `json:"syntax_time"`
	TimeComplexity     string                    `json:"time_complexity"`
	Summary            []string                  `json:"summary"`
	Suggestions        []string                  `json:"suggestions"`
	ASTImage           string                    `json:"ast_image"`
	AST                ast.Shape                 `json:"ast"`
	CollaboratorErrors []ports.CollaboratorError `json:"collaborator_errors,omitempty"`
}

// BuildPayload converts a result. Timings are seconds rounded to four
// decimals and every list is non-nil so it encodes as [].
func BuildPayload(res ports.AnalysisResult) Payload {
	p := Payload{
		RunID:              res.RunID,
		Path:               res.Path,
		ExecutionStatus:    string(res.Execution.Status),
		ExecutionOutput:    res.Execution.Output,
		Lexical:            res.Tokens.Frequencies,
		InvalidTokens:      nonNil(res.Tokens.InvalidTokens),
		LexicalTime:        round4(res.Tokens.Elapsed.Seconds()),
		SyntaxResult:       string(res.Syntax.Verdict),
		SyntaxErrors:       nonNil(res.Syntax.Messages()),
		SyntaxTime:         round4(res.Syntax.Elapsed.Seconds()),
		TimeComplexity:     res.Complexity.String(),
		Summary:            nonNil(res.Insight.Summary),
		Suggestions:        nonNil(res.Insight.Suggestions),
		ASTImage:           res.Visualization,
		CollaboratorErrors: res.CollaboratorErrors,
	}
	if p.Lexical == nil {
		p.Lexical = map[string]int{}
	}
	if res.AST != nil {
		p.AST = res.AST.Shape()
	}
	return p
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
