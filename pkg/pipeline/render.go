package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/render"
	"github.com/matzehuels/topochart/pkg/render/nodelink"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/topology"
)

// RenderFromLayout generates the artifacts in opts.Formats from a computed
// layout. data must be the dataset the layout was computed from.
func RenderFromLayout(ctx context.Context, l Layout, data *topology.Dataset, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	// png and pdf convert the svg, so it is built at most once.
	var svg func() ([]byte, error)
	if l.IsGraphviz() {
		svg = sync.OnceValues(func() ([]byte, error) { return nodelink.RenderSVG(ctx, l.DOT) })
	} else {
		if l.Chart == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "force layout missing positions")
		}
		svg = sync.OnceValues(func() ([]byte, error) { return chartSVG(l, data, opts) })
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			out []byte
			err error
		)
		switch format {
		case render.FormatSVG:
			out, err = svg()
		case render.FormatPNG, render.FormatPDF:
			var s []byte
			if s, err = svg(); err == nil {
				if format == render.FormatPNG {
					out, err = render.ToPNG(ctx, s, opts.Scale)
				} else {
					out, err = render.ToPDF(ctx, s)
				}
			}
		case render.FormatJSON:
			out, err = MarshalLayout(l)
		case render.FormatDOT:
			out = []byte(layoutDOT(l, data, opts))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = out
	}
	return artifacts, nil
}

// chartSVG redraws a settled force layout without running the simulation.
func chartSVG(l Layout, data *topology.Dataset, opts Options) ([]byte, error) {
	c := chart.New(opts.ChartOptions()...)
	defer c.Close()

	c.Render(scene.New("div"), data.Clone())
	c.Restore(*l.Chart)
	svg := c.SVG()
	if svg == nil {
		return nil, errors.New(errors.ErrCodeInternal, "chart produced no svg")
	}
	return svg, nil
}

// layoutDOT returns Graphviz source for the layout. Force layouts pin every
// node at its settled position.
func layoutDOT(l Layout, data *topology.Dataset, opts Options) string {
	if l.IsGraphviz() {
		return l.DOT
	}
	pos := make(map[string]nodelink.Point, len(l.Chart.Nodes))
	for _, n := range l.Chart.Nodes {
		pos[n.ID] = nodelink.Point{X: n.X, Y: n.Y}
	}
	m := l.Chart.Margin
	return nodelink.ToDOT(data, nodelink.Options{
		Positions: pos,
		Height:    l.Chart.Height - m.Top - m.Bottom,
		Detailed:  opts.Detailed,
	})
}
