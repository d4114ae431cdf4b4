package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/render/nodelink"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/topology"
)

// =============================================================================
// Layout
// =============================================================================

// Layout is the serializable result of the layout stage. Exactly one of
// Chart (force engine) and DOT (graphviz engine) is set.
type Layout struct {
	Engine string        `json:"engine"`
	Seed   uint64        `json:"seed,omitempty"`
	Ticks  int           `json:"ticks,omitempty"`
	Chart  *chart.Layout `json:"chart,omitempty"`
	DOT    string        `json:"dot,omitempty"`
}

// IsGraphviz reports whether Graphviz places the nodes.
func (l Layout) IsGraphviz() bool { return l.Engine == EngineGraphviz }

// MarshalLayout serializes a layout as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout parses a layout produced by [MarshalLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse layout")
	}
	if l.Chart == nil && l.DOT == "" {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout has neither chart positions nor DOT")
	}
	return l, nil
}

// GenerateLayout computes a layout with the engine named in opts.
func GenerateLayout(data *topology.Dataset, opts Options) (Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return Layout{}, err
	}
	if opts.IsGraphviz() {
		return Layout{
			Engine: EngineGraphviz,
			DOT:    nodelink.ToDOT(data, nodelink.Options{Detailed: opts.Detailed}),
		}, nil
	}
	return generateForceLayout(data, opts), nil
}

// generateForceLayout renders data into a throwaway chart and runs the
// simulation to rest.
func generateForceLayout(data *topology.Dataset, opts Options) Layout {
	c := chart.New(opts.ChartOptions()...)
	defer c.Close()

	c.Render(scene.New("div"), data.Clone())
	ticks := c.Settle()
	cl := c.Layout()

	opts.Logger.Debug("force layout settled", "ticks", ticks, "alpha", cl.Alpha)
	return Layout{
		Engine: EngineForce,
		Seed:   opts.Seed,
		Ticks:  ticks,
		Chart:  &cl,
	}
}
