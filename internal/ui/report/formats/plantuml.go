package formats

import (
	"fmt"
	"strings"

	"codelens/internal/engine/ast"
)

type PlantUMLGenerator struct {
	tree *ast.Tree
}

func NewPlantUMLGenerator(tree *ast.Tree) *PlantUMLGenerator {
	return &PlantUMLGenerator{tree: tree}
}

// Generate emits a WBS diagram where depth is encoded by the number of
// leading asterisks.
func (p *PlantUMLGenerator) Generate() (string, error) {
	if p.tree == nil {
		return "", fmt.Errorf("plantuml: nil tree")
	}

	depth := map[ast.NodeID]int{}
	var b strings.Builder
	b.WriteString("@startwbs\n")
	p.tree.Walk(func(n ast.Node, parent ast.NodeID) {
		d := 1
		if parent >= 0 {
			d = depth[parent] + 1
		}
		depth[n.ID] = d
		fmt.Fprintf(&b, "%s %s\n", strings.Repeat("*", d), n.Label())
	})
	b.WriteString("@endwbs\n")
	return b.String(), nil
}
