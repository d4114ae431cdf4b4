package topology

import (
	"fmt"
	"maps"

	"github.com/matzehuels/topochart/pkg/force"
)

// =============================================================================
// Node
// =============================================================================

// Node is one network resource. The embedded force.Node carries the
// simulation position, velocity and drag pin.
type Node struct {
	ID    string         `json:"id" yaml:"id" bson:"id"`
	Type  NodeType       `json:"node_type" yaml:"node_type" bson:"node_type"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" bson:"meta,omitempty"`

	force.Node `yaml:",inline" bson:",inline"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Style returns the visual style for the node's type.
func (n *Node) Style() Style { return StyleFor(n.Type) }

// Clone returns a deep copy, including pins.
func (n *Node) Clone() *Node {
	c := *n
	c.Meta = maps.Clone(n.Meta)
	if n.FX != nil {
		fx := *n.FX
		c.FX = &fx
	}
	if n.FY != nil {
		fy := *n.FY
		c.FY = &fy
	}
	return &c
}

// =============================================================================
// Link
// =============================================================================

// Link connects two nodes by identifier.
type Link struct {
	ID     string         `json:"id,omitempty" yaml:"id,omitempty" bson:"id,omitempty"`
	Source string         `json:"source" yaml:"source" bson:"source"`
	Target string         `json:"target" yaml:"target" bson:"target"`
	Meta   map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Dataset
// =============================================================================

// Dataset is the unit bound to a chart.
type Dataset struct {
	Nodes []*Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Links []*Link `json:"links" yaml:"links" bson:"links"`
}

// Empty reports whether the dataset has nothing to draw.
func (d *Dataset) Empty() bool {
	return d == nil || (len(d.Nodes) == 0 && len(d.Links) == 0)
}

// Index maps node IDs to nodes. Later duplicates win.
func (d *Dataset) Index() map[string]*Node {
	idx := make(map[string]*Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if n != nil {
			idx[n.ID] = n
		}
	}
	return idx
}

// Clone returns a deep copy so callers can mutate positions independently.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Nodes: make([]*Node, 0, len(d.Nodes)),
		Links: make([]*Link, 0, len(d.Links)),
	}
	for _, n := range d.Nodes {
		if n != nil {
			out.Nodes = append(out.Nodes, n.Clone())
		}
	}
	for _, l := range d.Links {
		if l != nil {
			c := *l
			c.Meta = maps.Clone(l.Meta)
			out.Links = append(out.Links, &c)
		}
	}
	return out
}

// CountByType tallies nodes per type. Unknown types are counted as-is.
func (d *Dataset) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int)
	for _, n := range d.Nodes {
		if n != nil {
			counts[n.Type]++
		}
	}
	return counts
}

// LinkKeys returns a stable identity key per link: the link ID when set,
// otherwise "source->target" with a "#n" suffix for repeated pairs.
func (d *Dataset) LinkKeys() []string {
	keys := make([]string, len(d.Links))
	seen := make(map[string]int)
	for i, l := range d.Links {
		if l == nil {
			continue
		}
		if l.ID != "" {
			keys[i] = l.ID
			continue
		}
		base := l.Source + "->" + l.Target
		seen[base]++
		if n := seen[base]; n > 1 {
			keys[i] = fmt.Sprintf("%s#%d", base, n-1)
		} else {
			keys[i] = base
		}
	}
	return keys
}
