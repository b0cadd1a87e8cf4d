// Package app wires configuration, the analysis pipeline and its
// collaborators into the services used by the CLI, HTTP and TUI front ends.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codelens/internal/core/config"
	"codelens/internal/core/ports"
	"codelens/internal/core/watcher"
	"codelens/internal/data/history"
	"codelens/internal/engine/render"
	"codelens/internal/engine/runner"
)

// Update is delivered to the update callback after each watch batch.
type Update struct {
	Results   []ports.AnalysisResult
	Removed   []string
	Failures  map[string]string
	Timestamp time.Time
}

// Dependencies overrides collaborators built from configuration. Nil
// fields keep the configured default.
type Dependencies struct {
	Executor     ports.Executor
	Visualizer   ports.Visualizer
	EntryPoints  ports.EntryPointResolver
	HistoryStore ports.HistoryStore
}

type App struct {
	Config   *config.Config
	Paths    config.ResolvedPaths
	Pipeline *Pipeline

	executor    ports.Executor
	visualizer  ports.Visualizer
	store       ports.HistoryStore
	storeCloser interface{ Close() error }
	writer      *HistoryWriter
	filter      *watcher.PathFilter

	activeWatcher *watcher.Watcher

	updateMu sync.RWMutex
	onUpdate func(Update)
}

func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	return NewWithDependencies(cfg, paths, Dependencies{})
}

func NewWithDependencies(cfg *config.Config, paths config.ResolvedPaths, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	filter, err := watcher.NewPathFilter(paths.ProjectRoot, cfg.Exclude.Dirs, cfg.Exclude.Files, cfg.Exclude.GitignoreEnabled())
	if err != nil {
		return nil, fmt.Errorf("build path filter: %w", err)
	}

	a := &App{Config: cfg, Paths: paths, filter: filter}

	if cfg.Execution.IsEnabled() {
		a.executor = deps.Executor
		if a.executor == nil {
			a.executor = runner.NewJavaExecutor(cfg.Execution)
		}
	}
	if cfg.Visualization.IsEnabled() {
		a.visualizer = deps.Visualizer
		if a.visualizer == nil {
			a.visualizer = render.NewRenderer(cfg.Visualization, paths.OutputDir)
		}
	}
	entryPoints := deps.EntryPoints
	if entryPoints == nil {
		entryPoints = runner.NewEntryPointFinder()
	}

	opts := []PipelineOption{WithEntryPoints(entryPoints, cfg.Execution.DefaultEntryPoint)}
	if a.executor != nil {
		opts = append(opts, WithExecutor(a.executor))
	}
	if a.visualizer != nil {
		opts = append(opts, WithVisualizer(a.visualizer))
	}

	if cfg.History.Enabled || deps.HistoryStore != nil {
		a.store = deps.HistoryStore
		if a.store == nil {
			store, err := history.Open(paths.HistoryDB)
			if err != nil {
				if history.IsCorruptError(err) {
					slog.Error("history database looks corrupt", "path", paths.HistoryDB, "error", err)
				}
				return nil, fmt.Errorf("open history: %w", err)
			}
			a.store = store
			a.storeCloser = store
		}
		a.writer = NewHistoryWriter(a.store, cfg.History.QueueCapacity)
		a.writer.Start()
		opts = append(opts, WithRecorder(a.writer))
	}

	a.Pipeline = NewPipeline(opts...)
	return a, nil
}

func (a *App) AnalysisService() ports.AnalysisService {
	return a.Pipeline
}

// History returns the configured run store, or nil when history is off.
func (a *App) History() ports.HistoryStore {
	return a.store
}

func (a *App) SetUpdateHandler(fn func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = fn
}

func (a *App) emit(u Update) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(u)
	}
}

// Close stops the watcher, drains pending history writes and closes the
// history database.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.writer != nil {
		if err := a.writer.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.storeCloser != nil {
		if err := a.storeCloser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
