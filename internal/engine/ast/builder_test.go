package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label())
	}
	return out
}

func TestBuild_SingleLineDeclarationAndPrint(t *testing.T) {
	tree := Build("int x = 5; System.out.println(x);")

	children := tree.Children(RootID)
	require.Len(t, children, 1)
	assert.Equal(t, KindVariable, children[0].Kind)
	assert.Equal(t, "x", children[0].Name)
}

func TestBuild_DeclarationThenPrintOnSeparateLines(t *testing.T) {
	tree := Build("int x = 5;\nSystem.out.println(x);")

	assert.Equal(t, []string{"Variable: x", "Print Statement"}, labels(tree.Children(RootID)))
}

func TestBuild_NestedProgram(t *testing.T) {
	src := `public class Main
{
    public static void main(String[] args) {
        int total = 0;
        for (int i = 0; i < 10; i++) {
            System.out.println(i);
        }
        String name="x";
    }
}`
	tree := Build(src)

	root := tree.Children(RootID)
	require.Len(t, root, 1)
	assert.Equal(t, "Class: Main", root[0].Label())

	class := tree.Children(root[0].ID)
	require.Len(t, class, 1)
	assert.Equal(t, "Method: main", class[0].Label())

	method := tree.Children(class[0].ID)
	assert.Equal(t, []string{"Variable: total", "Loop", "Variable: name\"x\""}, labels(method))

	loop := tree.Children(method[1].ID)
	assert.Equal(t, []string{"Print Statement"}, labels(loop))
}

func TestBuild_StrayClosingBraceIsNoOp(t *testing.T) {
	tree := Build("}\n}\nint a;\n")

	children := tree.Children(RootID)
	require.Len(t, children, 1)
	assert.Equal(t, "Variable: a", children[0].Label())
}

func TestBuild_ClosingBraceOnSameLinePopsImmediately(t *testing.T) {
	tree := Build("while (true) { }\nint after;")

	assert.Equal(t, []string{"Loop", "Variable: after"}, labels(tree.Children(RootID)))
}

func TestBuild_RulePriority(t *testing.T) {
	// Contains "for" and starts with a type keyword: the loop rule wins.
	tree := Build("int format;")
	children := tree.Children(RootID)
	require.Len(t, children, 1)
	assert.Equal(t, KindLoop, children[0].Kind)
}

func TestBuild_VariablesAreLeaves(t *testing.T) {
	tree := Build("double d;\nint i;")

	root := tree.Children(RootID)
	require.Len(t, root, 2)
	assert.Empty(t, root[0].Children)
}

func TestBuild_DegenerateInput(t *testing.T) {
	for _, src := range []string{"", "\n\n", "x = y;", "return;"} {
		tree := Build(src)
		assert.Equal(t, 1, tree.Len(), "%q", src)
		assert.Equal(t, KindRoot, tree.Root().Kind)
	}
}

func TestBuild_SingleWordDeclaration(t *testing.T) {
	tree := Build("int")
	children := tree.Children(RootID)
	require.Len(t, children, 1)
	assert.Equal(t, "", children[0].Name)
}

func TestTree_WalkVisitsParentsBeforeChildren(t *testing.T) {
	tree := Build("public class A\nint x;\n}\nint y;")

	var visited []string
	var parents []NodeID
	tree.Walk(func(n Node, parent NodeID) {
		visited = append(visited, n.Label())
		parents = append(parents, parent)
	})
	assert.Equal(t, []string{"Root", "Class: A", "Variable: x", "Variable: y"}, visited)
	assert.Equal(t, []NodeID{-1, RootID, 1, RootID}, parents)
}

func TestTree_Shape(t *testing.T) {
	shape := Build("public class A\nint x;").Shape()

	assert.Equal(t, "Root", shape.Kind)
	require.Len(t, shape.Children, 1)
	assert.Equal(t, "Class", shape.Children[0].Kind)
	assert.Equal(t, "A", shape.Children[0].Name)
	require.Len(t, shape.Children[0].Children, 1)
	assert.Equal(t, "Variable: x", shape.Children[0].Children[0].Label)
}

func TestBuild_Idempotent(t *testing.T) {
	src := "public class A\nfor (;;) {\nint q;\n}\n}"
	assert.Equal(t, Build(src).Shape(), Build(src).Shape())
}

func TestDeclaredName(t *testing.T) {
	assert.Equal(t, "x", DeclaredName("int x = 5;"))
	assert.Equal(t, "y", DeclaredName("float y;"))
	assert.Equal(t, "z5", DeclaredName("int z=5;"))
	assert.Equal(t, "", DeclaredName("int"))
}
