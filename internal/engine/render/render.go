// Package render turns a syntax tree into an artifact on disk.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"codelens/internal/core/config"
	"codelens/internal/core/errors"
	"codelens/internal/engine/ast"
	"codelens/internal/ui/report/formats"
)

const collaboratorName = "visualizer"

var extensions = map[string]string{
	"png":      ".png",
	"svg":      ".svg",
	"dot":      ".dot",
	"mermaid":  ".mmd",
	"plantuml": ".puml",
}

// Renderer writes ast_<uuid>.<ext> into its output directory. Raster and
// vector formats go through the Graphviz dot binary; text formats are
// written directly.
type Renderer struct {
	format    string
	dotBinary string
	outputDir string
	dpi       int
	size      string
	timeout   time.Duration
	newID     func() string
}

func NewRenderer(cfg config.Visualization, outputDir string) *Renderer {
	return &Renderer{
		format:    cfg.Format,
		dotBinary: cfg.DotBinary,
		outputDir: outputDir,
		dpi:       cfg.DPI,
		size:      cfg.Size,
		timeout:   cfg.Timeout,
		newID:     func() string { return uuid.NewString() },
	}
}

func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// Available reports whether the configured format can be produced. Text
// formats need no external binary.
func (r *Renderer) Available() error {
	if _, ok := extensions[r.format]; !ok {
		return errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported visualization format %q", r.format))
	}
	if r.format != "png" && r.format != "svg" {
		return nil
	}
	if _, err := exec.LookPath(r.dotBinary); err != nil {
		return errors.Unavailable(err, collaboratorName, "lookup "+r.dotBinary)
	}
	return nil
}

// Visualize returns the artifact file name relative to the output directory.
func (r *Renderer) Visualize(ctx context.Context, tree *ast.Tree) (string, error) {
	ext, ok := extensions[r.format]
	if !ok {
		return "", errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported visualization format %q", r.format))
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.Unavailable(err, collaboratorName, "create output dir")
	}

	name := "ast_" + r.newID() + ext
	target := filepath.Join(r.outputDir, name)

	switch r.format {
	case "png", "svg":
		if err := r.renderGraphviz(ctx, tree, target); err != nil {
			return "", err
		}
	default:
		text, err := r.text(tree)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "generate diagram")
		}
		if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
			return "", errors.Unavailable(err, collaboratorName, "write artifact")
		}
	}
	return name, nil
}

func (r *Renderer) text(tree *ast.Tree) (string, error) {
	switch r.format {
	case "mermaid":
		return formats.NewMermaidGenerator(tree).Generate()
	case "plantuml":
		return formats.NewPlantUMLGenerator(tree).Generate()
	default:
		return r.dot(tree)
	}
}

func (r *Renderer) dot(tree *ast.Tree) (string, error) {
	gen := formats.NewDOTGenerator(tree)
	gen.SetGraphAttributes(r.dpi, r.size)
	return gen.Generate()
}

func (r *Renderer) renderGraphviz(ctx context.Context, tree *ast.Tree, target string) error {
	bin, err := exec.LookPath(r.dotBinary)
	if err != nil {
		return errors.Unavailable(err, collaboratorName, "lookup "+r.dotBinary)
	}
	src, err := r.dot(tree)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "generate dot")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+r.format, "-o", target)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(target)
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return errors.Unavailable(err, collaboratorName, "run "+r.dotBinary)
	}
	return nil
}
