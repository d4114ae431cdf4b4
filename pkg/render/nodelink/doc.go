// Package nodelink renders topology datasets through Graphviz.
//
// # Overview
//
// This is the alternate layout engine. [ToDOT] emits an undirected graph
// whose nodes carry the chart's radius and palette color. Without positions
// Graphviz's fdp (a force-directed engine of its own) places the nodes; with
// positions from a settled chart the nodes are pinned and neato only routes
// edges and labels, which makes the DOT export match the chart.
//
// # Usage
//
//	dot := nodelink.ToDOT(data, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
