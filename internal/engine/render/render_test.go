package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/core/config"
	"codelens/internal/core/errors"
	"codelens/internal/engine/ast"
)

func newRenderer(t *testing.T, format string) *Renderer {
	t.Helper()
	r := NewRenderer(config.Visualization{
		Format:    format,
		DotBinary: "dot",
		DPI:       300,
		Size:      "10,10",
		Timeout:   5 * time.Second,
	}, filepath.Join(t.TempDir(), "static"))
	r.newID = func() string { return "fixed" }
	return r
}

func TestRenderer_TextFormats(t *testing.T) {
	tree := ast.Build("public class A\nint x;")

	cases := map[string]struct {
		file     string
		contains string
	}{
		"dot":      {"ast_fixed.dot", "digraph AST {"},
		"mermaid":  {"ast_fixed.mmd", "flowchart TD"},
		"plantuml": {"ast_fixed.puml", "@startwbs"},
	}
	for format, tc := range cases {
		t.Run(format, func(t *testing.T) {
			r := newRenderer(t, format)
			name, err := r.Visualize(context.Background(), tree)
			require.NoError(t, err)
			assert.Equal(t, tc.file, name)

			data, err := os.ReadFile(filepath.Join(r.OutputDir(), name))
			require.NoError(t, err)
			assert.Contains(t, string(data), tc.contains)
			assert.Contains(t, string(data), "Variable: x")
		})
	}
}

func TestRenderer_UnsupportedFormat(t *testing.T) {
	r := newRenderer(t, "gif")
	_, err := r.Visualize(context.Background(), ast.Build(""))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestRenderer_MissingGraphvizIsUnavailable(t *testing.T) {
	r := newRenderer(t, "png")
	r.dotBinary = filepath.Join(t.TempDir(), "no-dot")

	_, err := r.Visualize(context.Background(), ast.Build("int x;"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCollaboratorUnavailable))
}

func TestRenderer_GraphvizInvocation(t *testing.T) {
	bin := t.TempDir()
	script := filepath.Join(bin, "dot")
	// Copies stdin to the -o target so the DOT text can be inspected.
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat > \"$3\"\n"), 0o755))

	r := newRenderer(t, "svg")
	r.dotBinary = script

	name, err := r.Visualize(context.Background(), ast.Build("int x;"))
	require.NoError(t, err)
	assert.Equal(t, "ast_fixed.svg", name)

	data, err := os.ReadFile(filepath.Join(r.OutputDir(), name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dpi=300")
}

func TestRenderer_GraphvizFailureRemovesArtifact(t *testing.T) {
	bin := t.TempDir()
	script := filepath.Join(bin, "dot")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 2\n"), 0o755))

	r := newRenderer(t, "png")
	r.dotBinary = script

	_, err := r.Visualize(context.Background(), ast.Build("int x;"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	_, statErr := os.Stat(filepath.Join(r.OutputDir(), "ast_fixed.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderer_Available(t *testing.T) {
	assert.NoError(t, newRenderer(t, "mermaid").Available())

	r := newRenderer(t, "png")
	r.dotBinary = filepath.Join(t.TempDir(), "no-dot")
	assert.True(t, errors.IsCode(r.Available(), errors.CodeCollaboratorUnavailable))

	assert.True(t, errors.IsCode(newRenderer(t, "gif").Available(), errors.CodeNotSupported))
}
