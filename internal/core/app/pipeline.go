package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"codelens/internal/core/errors"
	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/engine/ast"
	"codelens/internal/engine/complexity"
	"codelens/internal/engine/insight"
	"codelens/internal/engine/lexer"
	"codelens/internal/engine/syntax"
	"codelens/internal/shared/observability"
)

const (
	collaboratorExecutor   = "executor"
	collaboratorVisualizer = "visualizer"

	DefaultEntryPoint = "Main"
)

// RunRecorder receives a summary of every completed analysis.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run)
}

// Pipeline runs the analysis stages in order and then hands the results to
// the execution and visualization collaborators. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	executor     ports.Executor
	visualizer   ports.Visualizer
	entryPoints  ports.EntryPointResolver
	defaultEntry string
	recorder     RunRecorder
	newRunID     func() string
	now          func() time.Time
}

var _ ports.AnalysisService = (*Pipeline)(nil)

type PipelineOption func(*Pipeline)

func WithExecutor(e ports.Executor) PipelineOption {
	return func(p *Pipeline) { p.executor = e }
}

func WithVisualizer(v ports.Visualizer) PipelineOption {
	return func(p *Pipeline) { p.visualizer = v }
}

// WithEntryPoints sets the resolver and the class name used when it finds
// nothing.
func WithEntryPoints(r ports.EntryPointResolver, fallback string) PipelineOption {
	return func(p *Pipeline) {
		p.entryPoints = r
		if strings.TrimSpace(fallback) != "" {
			p.defaultEntry = fallback
		}
	}
}

func WithRecorder(r RunRecorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = r }
}

func withClock(now func() time.Time, ids func() string) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
		p.newRunID = ids
	}
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		defaultEntry: DefaultEntryPoint,
		newRunID:     uuid.NewString,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze never fails because of the source text. Collaborator failures are
// recorded in the result; only a cancelled context returns an error.
func (p *Pipeline) Analyze(ctx context.Context, req ports.AnalysisRequest) (ports.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.AnalysisResult{}, err
	}

	res := ports.AnalysisResult{
		RunID:     p.newRunID(),
		Path:      req.Path,
		StartedAt: p.now(),
	}
	ctx, span := observability.Tracer.Start(ctx, "Pipeline.Analyze", trace.WithAttributes(
		attribute.String("codelens.run_id", res.RunID),
		attribute.String("codelens.path", req.Path),
		attribute.Int("codelens.source_bytes", len(req.Source)),
	))
	defer span.End()
	started := time.Now()

	phase(ctx, "lexical", func() { res.Tokens = lexer.Tokenize(req.Source) })
	phase(ctx, "syntax", func() { res.Syntax = syntax.Validate(req.Source) })
	phase(ctx, "ast", func() { res.AST = ast.Build(req.Source) })
	phase(ctx, "insight", func() { res.Insight = insight.Summarize(req.Source) })
	phase(ctx, "complexity", func() { res.Complexity = complexity.Estimate(req.Source) })

	observability.InvalidTokensTotal.Add(float64(len(res.Tokens.InvalidTokens)))
	for _, e := range res.Syntax.Errors {
		observability.StructureErrorsTotal.WithLabelValues(string(e.Kind)).Inc()
	}

	p.execute(ctx, req, &res)
	p.visualize(ctx, req, &res)

	res.Duration = time.Since(started)
	observability.AnalysesTotal.WithLabelValues(string(res.Syntax.Verdict)).Inc()
	span.SetAttributes(
		attribute.String("codelens.verdict", string(res.Syntax.Verdict)),
		attribute.String("codelens.execution_status", string(res.Execution.Status)),
	)

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	if p.recorder != nil {
		p.recorder.Record(ctx, RunSummary(res, req.Source))
	}
	slog.Debug("analysis complete",
		"run_id", res.RunID,
		"path", res.Path,
		"verdict", res.Syntax.Verdict,
		"execution", res.Execution.Status,
		"duration", res.Duration,
	)
	return res, nil
}

func phase(ctx context.Context, name string, fn func()) {
	_, span := observability.Tracer.Start(ctx, "phase."+name)
	start := time.Now()
	fn()
	observability.PhaseDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	span.End()
}

func (p *Pipeline) execute(ctx context.Context, req ports.AnalysisRequest, res *ports.AnalysisResult) {
	switch {
	case res.Syntax.Verdict == syntax.Incorrect:
		res.Execution = ports.ExecutionOutcome{
			Status: ports.StatusIncorrectSyntax,
			Output: strings.Join(res.Syntax.Messages(), "\n"),
		}
	case req.SkipExecution || p.executor == nil:
		res.Execution = ports.ExecutionOutcome{Status: ports.StatusSkipped}
	default:
		entry := p.defaultEntry
		if p.entryPoints != nil {
			if name, ok := p.entryPoints.EntryPoint(req.Source); ok {
				entry = name
			}
		}

		callCtx, span := observability.Tracer.Start(ctx, "Executor.Execute", trace.WithAttributes(
			attribute.String("codelens.entry_point", entry),
		))
		outcome, err := p.executor.Execute(callCtx, req.Source, entry)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			p.collaboratorFailed(res, collaboratorExecutor, err)
			res.Execution = ports.ExecutionOutcome{Status: ports.StatusUnavailable}
			break
		}
		span.End()
		res.Execution = outcome
	}
	observability.ExecutionOutcomesTotal.WithLabelValues(string(res.Execution.Status)).Inc()
}

func (p *Pipeline) visualize(ctx context.Context, req ports.AnalysisRequest, res *ports.AnalysisResult) {
	if req.SkipVisualization || p.visualizer == nil {
		return
	}
	callCtx, span := observability.Tracer.Start(ctx, "Visualizer.Visualize")
	defer span.End()

	ref, err := p.visualizer.Visualize(callCtx, res.AST)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.collaboratorFailed(res, collaboratorVisualizer, err)
		return
	}
	res.Visualization = ref
}

func (p *Pipeline) collaboratorFailed(res *ports.AnalysisResult, collaborator string, err error) {
	code, ok := errors.CodeOf(err)
	if !ok {
		code = errors.CodeCollaboratorUnavailable
	}
	observability.CollaboratorFailuresTotal.WithLabelValues(collaborator).Inc()
	slog.Warn("collaborator failed", "collaborator", collaborator, "run_id", res.RunID, "error", err)
	res.CollaboratorErrors = append(res.CollaboratorErrors, ports.CollaboratorError{
		Collaborator: collaborator,
		Code:         string(code),
		Message:      err.Error(),
	})
}

// RunSummary condenses a result into a history row. The source text itself
// is not stored.
func RunSummary(res ports.AnalysisResult, source string) history.Run {
	sum := sha256.Sum256([]byte(source))
	run := history.Run{
		SchemaVersion:       history.SchemaVersion,
		RunID:               res.RunID,
		Path:                res.Path,
		SourceHash:          hex.EncodeToString(sum[:]),
		Timestamp:           res.StartedAt,
		TokenCount:          res.Tokens.Total(),
		DistinctTokens:      len(res.Tokens.Frequencies),
		InvalidTokenCount:   len(res.Tokens.InvalidTokens),
		Verdict:             string(res.Syntax.Verdict),
		StructureErrorCount: len(res.Syntax.Errors),
		LoopCount:           complexity.Loops(source),
		Complexity:          res.Complexity.String(),
		ExecutionStatus:     string(res.Execution.Status),
		Visualization:       res.Visualization,
		DurationMS:          float64(res.Duration.Microseconds()) / 1000,
	}
	if res.AST != nil {
		run.NodeCount = res.AST.Len()
	}
	return run
}
