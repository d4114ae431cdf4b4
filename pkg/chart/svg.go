package chart

import (
	"bytes"
	"io"

	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/topology"
)

const hoverCSS = `
    .node { cursor: move; }
    .node circle { stroke: #fff; stroke-width: 1.5px; transition: stroke 0.2s ease; }
    .node:hover circle { stroke: #333; }
    .node text { font: 10px sans-serif; pointer-events: none; }
    .link { stroke-opacity: 0.6; }`

// hoverJS re-emits node hovers as a "customHover" DOM event on the svg and,
// when data-endpoint is set, posts the node ID there.
const hoverJS = `
    (function() {
      var svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg');
      if (!svg) return;
      var endpoint = svg.getAttribute('data-endpoint');
      svg.querySelectorAll('.node').forEach(function(el) {
        el.addEventListener('mouseenter', function() {
          var id = el.getAttribute('data-id');
          svg.dispatchEvent(new CustomEvent('customHover', {detail: {id: id, type: el.getAttribute('data-type')}}));
          if (endpoint) {
            fetch(endpoint.replace('{node}', encodeURIComponent(id)), {method: 'POST'}).catch(function() {});
          }
        });
      });
    })();`

// ensureAssets adds the style and script elements once. Called with c.mu
// held.
func (c *Chart) ensureAssets(svg *scene.Element) {
	if len(svg.ChildrenMatching("style")) == 0 {
		svg.Append("style").Raw = hoverCSS
	}
	if len(svg.ChildrenMatching("script")) == 0 {
		svg.Append("script").Raw = "//<![CDATA[" + hoverJS + "\n//]]>"
	}
	if c.hoverEndpoint != "" {
		svg.SetAttr("data-endpoint", c.hoverEndpoint)
	}
}

// =============================================================================
// Output
// =============================================================================

// WriteSVG serializes the current drawing surface.
func (c *Chart) WriteSVG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.svg == nil {
		return errors.New(errors.ErrCodeNotFound, "chart has not been rendered")
	}
	return c.svg.WriteXML(w)
}

// SVG returns the current drawing surface, or nil before the first Render.
func (c *Chart) SVG() []byte {
	var buf bytes.Buffer
	if err := c.WriteSVG(&buf); err != nil {
		return nil
	}
	return buf.Bytes()
}

// =============================================================================
// Layout snapshots
// =============================================================================

// NodePosition is the placement of one node.
type NodePosition struct {
	ID     string            `json:"id" bson:"id"`
	Type   topology.NodeType `json:"node_type" bson:"node_type"`
	X      float64           `json:"x" bson:"x"`
	Y      float64           `json:"y" bson:"y"`
	Pinned bool              `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// LinkPosition is the drawn segment of one link.
type LinkPosition struct {
	Source string  `json:"source" bson:"source"`
	Target string  `json:"target" bson:"target"`
	X1     float64 `json:"x1" bson:"x1"`
	Y1     float64 `json:"y1" bson:"y1"`
	X2     float64 `json:"x2" bson:"x2"`
	Y2     float64 `json:"y2" bson:"y2"`
}

// Layout is a point-in-time view of the chart geometry.
type Layout struct {
	Width  float64        `json:"width" bson:"width"`
	Height float64        `json:"height" bson:"height"`
	Margin Margin         `json:"margin" bson:"margin"`
	Alpha  float64        `json:"alpha" bson:"alpha"`
	Nodes  []NodePosition `json:"nodes" bson:"nodes"`
	Links  []LinkPosition `json:"links" bson:"links"`
}

// Layout captures node and link positions in content coordinates.
func (c *Chart) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := Layout{
		Width:  c.width,
		Height: c.height,
		Margin: c.margin,
		Alpha:  c.sim.Alpha(),
		Nodes:  make([]NodePosition, 0, len(c.nodeEls)),
		Links:  make([]LinkPosition, 0, len(c.linkEls)),
	}
	for _, bn := range c.nodeEls {
		n := bn.node
		l.Nodes = append(l.Nodes, NodePosition{ID: n.ID, Type: n.Type, X: n.X, Y: n.Y, Pinned: n.Pinned()})
	}
	for _, bl := range c.linkEls {
		l.Links = append(l.Links, LinkPosition{
			Source: bl.source.ID, Target: bl.target.ID,
			X1: bl.source.X, Y1: bl.source.Y,
			X2: bl.target.X, Y2: bl.target.Y,
		})
	}
	return l
}

// Restore moves bound nodes to the positions in l, matched by ID, and
// updates the drawing. Velocities are cleared. It returns the number of
// nodes moved.
func (c *Chart) Restore(l Layout) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	moved := 0
	for _, p := range l.Nodes {
		n, ok := c.nodes[p.ID]
		if !ok {
			continue
		}
		n.X, n.Y = p.X, p.Y
		n.VX, n.VY = 0, 0
		moved++
	}
	c.ticked()
	return moved
}
