// Package render turns laid-out topology charts into files.
//
// # Overview
//
// The force-directed chart (package chart) serializes itself to SVG. This
// package covers everything after that:
//
//   - Format names and MIME types ([ParseFormats], [ContentType])
//   - SVG to PDF/PNG conversion via the external rsvg-convert tool
//   - An alternate Graphviz layout engine (in the [nodelink] subpackage)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (librsvg). Both honor the
// context deadline:
//
//	svg := c.SVG()
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage emits the dataset as Graphviz DOT, either with
// force-computed positions pinned or left to Graphviz's fdp engine, and
// renders it in-process:
//
//	dot := nodelink.ToDOT(data, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/topochart/pkg/render/nodelink
package render
