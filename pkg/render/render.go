// Package render produces DOT, SVG, and PNG drawings of an analysis result.
//
// Node positions come from the analysis layout and are pinned, so the
// Graphviz output matches what an interactive client would show. Edges that
// belong to the planarity obstruction are drawn in red.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/planview/planview/pkg/analysis"
)

// Options configures rendering.
type Options struct {
	// Scale multiplies layout coordinates into Graphviz inches. Zero
	// selects a readable default.
	Scale float64
}

const defaultScale = 3.0

// ToDOT converts an analysis result to Graphviz DOT with pinned positions.
// The resulting DOT string can be rendered with [ToSVG] or [ToPNG].
func ToDOT(res *analysis.Result, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.4f,%.4f!\"];\n",
			n.ID, n.Label, n.X*scale, n.Y*scale)
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		if e.IsConflict {
			fmt.Fprintf(&buf, "  %q -- %q [color=red, penwidth=2];\n", e.Source, e.Target)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToSVG renders a DOT graph to SVG using Graphviz.
func ToSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// ToPNG renders a DOT graph to PNG using Graphviz.
func ToPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
