package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"codelens/internal/core/watcher"
)

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.filter, a.HandleChanges)
	if err != nil {
		return err
	}
	if err := w.Watch(a.Config.Watch.Paths); err != nil {
		_ = w.Close()
		return err
	}
	a.activeWatcher = w
	return nil
}

// HandleChanges re-analyzes changed files and reports the batch through the
// update handler. Paths that no longer exist are reported as removed.
func (a *App) HandleChanges(paths []string) {
	update := Update{Failures: make(map[string]string), Timestamp: time.Now().UTC()}
	ctx := context.Background()

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			update.Removed = append(update.Removed, path)
			continue
		}
		res, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			slog.Warn("failed to analyze changed file", "path", path, "error", err)
			update.Failures[path] = err.Error()
			continue
		}
		update.Results = append(update.Results, res)
	}

	slog.Info("watch batch analyzed",
		"analyzed", len(update.Results),
		"removed", len(update.Removed),
		"failed", len(update.Failures),
	)
	a.emit(update)
}
