package runner

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// EntryPointFinder locates the class declaring a static main method using
// the Java grammar. The heuristic analysis stages never depend on it.
type EntryPointFinder struct {
	pool *parserPool
}

func NewEntryPointFinder() *EntryPointFinder {
	return &EntryPointFinder{pool: newParserPool(sitter.NewLanguage(tree_sitter_java.Language()))}
}

// EntryPoint returns the name of the first top-level class with a static
// main method, preferring public classes. ok is false when none exists or
// the source cannot be parsed.
func (f *EntryPointFinder) EntryPoint(source string) (string, bool) {
	content := []byte(source)
	sp := f.pool.get()
	defer f.pool.put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return "", false
	}
	defer tree.Close()

	var fallback string
	root := tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil || node.Kind() != "class_declaration" {
			continue
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil || !declaresMain(node.ChildByFieldName("body"), content) {
			continue
		}
		name := nameNode.Utf8Text(content)
		if strings.Contains(modifiers(node, content), "public") {
			return name, true
		}
		if fallback == "" {
			fallback = name
		}
	}
	return fallback, fallback != ""
}

func declaresMain(body *sitter.Node, content []byte) bool {
	if body == nil {
		return false
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil || member.Kind() != "method_declaration" {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || name.Utf8Text(content) != "main" {
			continue
		}
		if strings.Contains(modifiers(member, content), "static") {
			return true
		}
	}
	return false
}

func modifiers(node *sitter.Node, content []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "modifiers" {
			return child.Utf8Text(content)
		}
	}
	return ""
}
