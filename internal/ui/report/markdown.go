package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codelens/internal/engine/ast"
	"codelens/internal/ui/report/formats"
)

const markerNamespace = "codelens"

// InjectTree replaces the block between the codelens marker comments in a
// markdown file with a fenced Mermaid diagram of tree. The file is
// rewritten atomically.
func InjectTree(filePath, marker string, tree *ast.Tree) error {
	diagram, err := formats.NewMermaidGenerator(tree).Generate()
	if err != nil {
		return err
	}
	return InjectBlock(filePath, marker, "```mermaid\n"+diagram+"```")
}

func InjectBlock(filePath, marker, block string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, block)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".codelens-inject-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", filePath, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(next)
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp markdown file %q: %w", tmpName, writeErr)
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace markdown file %q: %w", filePath, err)
	}
	return nil
}

// ReplaceBetweenMarkers requires exactly one start and one end marker, in
// that order, and keeps the document's line ending style.
func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
		replacement = strings.ReplaceAll(replacement, "\n", "\r\n")
	}

	start := fmt.Sprintf("<!-- %s:%s:start -->", markerNamespace, marker)
	end := fmt.Sprintf("<!-- %s:%s:end -->", markerNamespace, marker)
	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	return prefix + newline + strings.TrimRight(replacement, "\r\n") + newline + suffix, nil
}
