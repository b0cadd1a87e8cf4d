package formats

import (
	"fmt"
	"strings"

	"codelens/internal/engine/ast"
)

// DOTGenerator emits a Graphviz digraph with one node per AST node and an
// edge from each parent to its children in order.
type DOTGenerator struct {
	tree *ast.Tree
	dpi  int
	size string
}

func NewDOTGenerator(tree *ast.Tree) *DOTGenerator {
	return &DOTGenerator{tree: tree}
}

// SetGraphAttributes sets the dpi and size graph attributes. Zero values
// omit the attribute.
func (d *DOTGenerator) SetGraphAttributes(dpi int, size string) {
	d.dpi = dpi
	d.size = size
}

func (d *DOTGenerator) Generate() (string, error) {
	if d.tree == nil {
		return "", fmt.Errorf("dot: nil tree")
	}

	var b strings.Builder
	b.WriteString("// AST\n")
	b.WriteString("digraph AST {\n")
	if attrs := d.graphAttributes(); attrs != "" {
		b.WriteString("\tgraph [" + attrs + "]\n")
	}

	var edges []string
	d.tree.Walk(func(n ast.Node, parent ast.NodeID) {
		fmt.Fprintf(&b, "\t%s [label=\"%s\"]\n", nodeID(n.ID), escapeLabel(n.Label()))
		if parent >= 0 {
			edges = append(edges, fmt.Sprintf("\t%s -> %s\n", nodeID(parent), nodeID(n.ID)))
		}
	})
	for _, e := range edges {
		b.WriteString(e)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (d *DOTGenerator) graphAttributes() string {
	var attrs []string
	if d.dpi > 0 {
		attrs = append(attrs, fmt.Sprintf("dpi=%d", d.dpi))
	}
	if d.size != "" {
		attrs = append(attrs, fmt.Sprintf("size=\"%s\"", escapeLabel(d.size)))
	}
	return strings.Join(attrs, " ")
}
