package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	StateDir    string
	CacheDir    string
	HistoryDB   string
	OutputDir   string
	LogFile     string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := strings.TrimSpace(cfg.Paths.ProjectRoot)
	if projectRoot != "" {
		projectRoot = ResolveRelative(cwd, projectRoot)
	} else {
		projectRoot = DetectProjectRoot(append(append([]string(nil), cfg.Watch.Paths...), cwd), cwd)
	}

	stateDir := ResolveRelative(projectRoot, cfg.Paths.StateDir)

	return ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		StateDir:    stateDir,
		CacheDir:    ResolveRelative(projectRoot, cfg.Paths.CacheDir),
		HistoryDB:   ResolveRelative(stateDir, cfg.History.Path),
		OutputDir:   ResolveRelative(projectRoot, cfg.Visualization.OutputDir),
		LogFile:     filepath.Join(stateDir, "codelens.log"),
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate looking for a project
// marker and falls back to fallback when none is found.
func DetectProjectRoot(candidates []string, fallback string) string {
	markers := []string{
		DefaultConfigFile,
		".git",
		"pom.xml",
		"build.gradle",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root)
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	return filepath.Clean(fallback)
}
