package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"codelens/internal/core/errors"
	"codelens/internal/core/ports"
)

// ScanSources expands roots into source files. Explicit file arguments are
// kept regardless of extension; directories are walked with the exclude
// globs and gitignore rules applied.
func (a *App) ScanSources(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "stat source path"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && a.filter.SkipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if a.filter.Accept(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, root)
		}
	}

	sort.Strings(files)
	return files, nil
}

// AnalyzeFile reads path and runs the pipeline over its content.
func (a *App) AnalyzeFile(ctx context.Context, path string) (ports.AnalysisResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ports.AnalysisResult{}, errors.AddContext(err, errors.CtxPath, path)
	}
	return a.Pipeline.Analyze(ctx, ports.AnalysisRequest{Source: string(content), Path: path})
}

// AnalyzePaths analyzes every scanned file in order. Unreadable files are
// logged and skipped; a cancelled context stops the loop.
func (a *App) AnalyzePaths(ctx context.Context, roots []string) ([]ports.AnalysisResult, error) {
	files, err := a.ScanSources(roots)
	if err != nil {
		return nil, err
	}

	results := make([]ports.AnalysisResult, 0, len(files))
	for _, path := range files {
		res, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			slog.Warn("failed to analyze file", "path", path, "error", err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
