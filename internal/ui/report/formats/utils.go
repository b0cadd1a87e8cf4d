package formats

import (
	"fmt"
	"strings"

	"codelens/internal/engine/ast"
)

func nodeID(id ast.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
