// Package ast builds a heuristic syntax tree from source lines.
//
// Nodes live in an arena owned by Tree and are addressed by NodeID. A parent
// holds the ordered ids of its children; no node is shared between parents.
package ast

import "fmt"

type Kind int

const (
	KindRoot Kind = iota
	KindClass
	KindMethod
	KindLoop
	KindVariable
	KindPrint
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindClass:
		return "Class"
	case KindMethod:
		return "Method"
	case KindLoop:
		return "Loop"
	case KindVariable:
		return "Variable"
	case KindPrint:
		return "Print"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Container reports whether nodes of this kind open a nesting level.
func (k Kind) Container() bool {
	switch k {
	case KindClass, KindMethod, KindLoop:
		return true
	default:
		return false
	}
}

type NodeID int

// RootID is the id of the unique entry point of every tree.
const RootID NodeID = 0

type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string
	Line     int // 1-based source line, 0 for Root
	Children []NodeID
}

// Label is the display text used by renderers, e.g. "Class: Main".
func (n Node) Label() string {
	switch n.Kind {
	case KindClass, KindMethod, KindVariable:
		return fmt.Sprintf("%s: %s", n.Kind, n.Name)
	case KindPrint:
		return "Print Statement"
	default:
		return n.Kind.String()
	}
}

type Tree struct {
	nodes []Node
}

func newTree() *Tree {
	return &Tree{nodes: []Node{{ID: RootID, Kind: KindRoot}}}
}

func (t *Tree) Root() Node {
	return t.nodes[RootID]
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return t.nodes[id], true
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Children(id NodeID) []Node {
	n, ok := t.Node(id)
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(n.Children))
	for _, child := range n.Children {
		out = append(out, t.nodes[child])
	}
	return out
}

// Walk visits nodes depth first in child order. The visitor receives the
// node and its parent id (-1 for Root).
func (t *Tree) Walk(visit func(n Node, parent NodeID)) {
	var walk func(id, parent NodeID)
	walk = func(id, parent NodeID) {
		n := t.nodes[id]
		visit(n, parent)
		for _, child := range n.Children {
			walk(child, id)
		}
	}
	walk(RootID, -1)
}

func (t *Tree) add(parent NodeID, kind Kind, name string, line int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, Kind: kind, Name: name, Line: line})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// Shape is a nested, serializable view of the tree.
type Shape struct {
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Label    string  `json:"label"`
	Children []Shape `json:"children,omitempty"`
}

func (t *Tree) Shape() Shape {
	var build func(id NodeID) Shape
	build = func(id NodeID) Shape {
		n := t.nodes[id]
		s := Shape{Kind: n.Kind.String(), Name: n.Name, Label: n.Label()}
		for _, child := range n.Children {
			s.Children = append(s.Children, build(child))
		}
		return s
	}
	return build(RootID)
}
