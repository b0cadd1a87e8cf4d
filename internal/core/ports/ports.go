package ports

import (
	"context"
	"time"

	"codelens/internal/data/history"
	"codelens/internal/engine/ast"
	"codelens/internal/engine/complexity"
	"codelens/internal/engine/insight"
	"codelens/internal/engine/lexer"
	"codelens/internal/engine/syntax"
)

type ExecutionStatus string

const (
	StatusCompilationError ExecutionStatus = "Compilation Error"
	StatusRuntimeError     ExecutionStatus = "Runtime Error"
	StatusSuccess          ExecutionStatus = "Execution Success"
	StatusIncorrectSyntax  ExecutionStatus = "Incorrect Syntax"
	StatusSkipped          ExecutionStatus = "Execution Skipped"
	StatusUnavailable      ExecutionStatus = "Execution Unavailable"
)

// ExecutionOutcome is what the execution collaborator reports for one run.
// Compilation and runtime failures are outcomes, not errors.
type ExecutionOutcome struct {
	Status   ExecutionStatus
	Output   string
	Duration time.Duration
}

// Executor compiles and runs source text. A returned error means the
// collaborator could not be invoked at all.
type Executor interface {
	Execute(ctx context.Context, source, entryPoint string) (ExecutionOutcome, error)
}

// Visualizer renders an AST and returns a reference to the artifact.
type Visualizer interface {
	Visualize(ctx context.Context, tree *ast.Tree) (string, error)
}

// EntryPointResolver finds the class that declares the program entry point.
type EntryPointResolver interface {
	EntryPoint(source string) (string, bool)
}

// HistoryStore abstracts run persistence for history listings.
type HistoryStore interface {
	SaveRun(ctx context.Context, run history.Run) error
	LoadRuns(ctx context.Context, since time.Time, limit int) ([]history.Run, error)
}

// AnalysisRequest is one unit of pipeline work.
type AnalysisRequest struct {
	Source            string
	Path              string
	SkipExecution     bool
	SkipVisualization bool
}

// CollaboratorError records a collaborator that could not be invoked.
type CollaboratorError struct {
	Collaborator string `json:"collaborator"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// AnalysisResult aggregates every pipeline output for one source text.
type AnalysisResult struct {
	RunID              string
	Path               string
	Tokens             lexer.Report
	Syntax             syntax.Result
	AST                *ast.Tree
	Insight            insight.Insight
	Complexity         complexity.Label
	Execution          ExecutionOutcome
	Visualization      string
	CollaboratorErrors []CollaboratorError
	StartedAt          time.Time
	Duration           time.Duration
}

// AnalysisService is the driving port used by the CLI, HTTP and TUI adapters.
type AnalysisService interface {
	Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error)
}
