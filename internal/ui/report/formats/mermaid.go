package formats

import (
	"fmt"
	"strings"

	"codelens/internal/engine/ast"
)

type MermaidGenerator struct {
	tree *ast.Tree
}

func NewMermaidGenerator(tree *ast.Tree) *MermaidGenerator {
	return &MermaidGenerator{tree: tree}
}

// Generate emits a top-down flowchart. Container nodes get a distinct class.
func (m *MermaidGenerator) Generate() (string, error) {
	if m.tree == nil {
		return "", fmt.Errorf("mermaid: nil tree")
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	var containers []string
	m.tree.Walk(func(n ast.Node, parent ast.NodeID) {
		id := nodeID(n.ID)
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", id, escapeLabel(n.Label()))
		if parent >= 0 {
			fmt.Fprintf(&b, "  %s --> %s\n", nodeID(parent), id)
		}
		if n.Kind.Container() {
			containers = append(containers, id)
		}
	})
	if len(containers) > 0 {
		b.WriteString("  classDef container fill:#eef,stroke:#336\n")
		fmt.Fprintf(&b, "  class %s container\n", strings.Join(containers, ","))
	}
	return b.String(), nil
}
