package watcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions lists the source file extensions analyzed by default.
var DefaultExtensions = []string{".java"}

// PathFilter decides which directories and files take part in scans and
// watch events. Glob patterns match base names; gitignore rules match paths
// relative to the root.
type PathFilter struct {
	root         string
	extensions   map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	gitignore    *ignore.GitIgnore
}

func NewPathFilter(root string, excludeDirs, excludeFiles []string, respectGitignore bool) (*PathFilter, error) {
	dirs, err := compileGlobs(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compileGlobs(excludeFiles)
	if err != nil {
		return nil, err
	}

	f := &PathFilter{
		root:         root,
		excludeDirs:  dirs,
		excludeFiles: files,
	}
	f.SetExtensions(DefaultExtensions)

	if respectGitignore && root != "" {
		path := filepath.Join(root, ".gitignore")
		if _, statErr := os.Stat(path); statErr == nil {
			gi, err := ignore.CompileIgnoreFile(path)
			if err != nil {
				return nil, err
			}
			f.gitignore = gi
		}
	}
	return f, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *PathFilter) SetExtensions(extensions []string) {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = true
	}
	f.extensions = set
}

// SkipDir reports whether a directory and everything below it is excluded.
func (f *PathFilter) SkipDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range f.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return f.ignored(path, true)
}

// Accept reports whether a file should be analyzed.
func (f *PathFilter) Accept(path string) bool {
	base := filepath.Base(path)
	if len(f.extensions) > 0 && !f.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	for _, g := range f.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return !f.ignored(path, false)
}

// ignored matches directories with a trailing slash so "dir/" rules apply.
func (f *PathFilter) ignored(path string, dir bool) bool {
	if f.gitignore == nil {
		return false
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if dir {
		rel += "/"
	}
	return f.gitignore.MatchesPath(rel)
}
