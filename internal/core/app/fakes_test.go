package app

import (
	"context"
	"sync"
	"time"

	"codelens/internal/core/errors"
	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/engine/ast"
)

type fakeExecutor struct {
	mu      sync.Mutex
	calls   []string
	outcome ports.ExecutionOutcome
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, entryPoint string) (ports.ExecutionOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, entryPoint)
	return f.outcome, f.err
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeVisualizer struct {
	ref   string
	err   error
	nodes int
}

func (f *fakeVisualizer) Visualize(_ context.Context, tree *ast.Tree) (string, error) {
	f.nodes = tree.Len()
	return f.ref, f.err
}

type fakeEntryPoints struct {
	name string
}

func (f fakeEntryPoints) EntryPoint(string) (string, bool) {
	return f.name, f.name != ""
}

type memoryRecorder struct {
	mu   sync.Mutex
	runs []history.Run
}

func (m *memoryRecorder) Record(_ context.Context, run history.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
}

type memoryStore struct {
	mu      sync.Mutex
	runs    []history.Run
	loadErr error
}

func (m *memoryStore) SaveRun(_ context.Context, run history.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryStore) LoadRuns(_ context.Context, _ time.Time, _ int) ([]history.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]history.Run(nil), m.runs...), nil
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

var errDotMissing = errors.Unavailable(errors.New(errors.CodeNotFound, "dot not found"), "visualizer", "lookup dot")
