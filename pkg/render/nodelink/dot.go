package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/topology"
)

// pointsPerInch converts pixel radii into Graphviz node widths (inches).
const pointsPerInch = 72.0

// Point is a pinned node position in chart coordinates (y grows downward).
type Point struct {
	X, Y float64
}

// Options configures DOT generation.
type Options struct {
	// Positions pins nodes at the given coordinates and switches the layout
	// to neato so Graphviz keeps them. Without positions fdp lays out the
	// graph itself.
	Positions map[string]Point

	// Height is the chart height used to flip y, since Graphviz puts the
	// origin at the bottom left. Ignored without Positions.
	Height float64

	// Detailed appends node metadata to labels.
	Detailed bool
}

// ToDOT converts a dataset to an undirected Graphviz graph. Nodes are filled
// circles sized and colored like the chart; dangling links are skipped.
func ToDOT(d *topology.Dataset, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if len(opts.Positions) > 0 {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  inputscale=72;\n")
	} else {
		buf.WriteString("  layout=fdp;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", color=\"#555555\", fontsize=10];\n")
	buf.WriteString("  edge [color=black];\n")
	buf.WriteString("\n")

	if d == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	index := d.Index()
	for _, n := range d.Nodes {
		if n == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, l := range d.Links {
		if l == nil || index[l.Source] == nil || index[l.Target] == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.Source, l.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *topology.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || len(n.Meta) == 0 {
		return label
	}
	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *topology.Node, opts Options) []string {
	style := n.Style()
	attrs := []string{
		fmt.Sprintf("xlabel=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("width=%s", fmtFloat(2*style.Radius/pointsPerInch)),
		fmt.Sprintf("fillcolor=%q", style.Color()),
		fmt.Sprintf("tooltip=%q", string(n.Type)),
	}
	if p, ok := opts.Positions[n.ID]; ok {
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X), fmtFloat(opts.Height-p.Y)))
	}
	return attrs
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG lays out and renders a DOT graph to SVG using Graphviz. The
// result can be converted further with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the output scales like the chart's own SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
