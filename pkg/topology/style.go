package topology

// NodeType is the K5 resource category of a node.
type NodeType string

// Known node types.
const (
	NodeTypePort    NodeType = "PORT"
	NodeTypeRouter  NodeType = "ROUTER"
	NodeTypeNetwork NodeType = "NETWORK"
	NodeTypeNC      NodeType = "NC"
	NodeTypeNCEP    NodeType = "NCEP"
	NodeTypeNCPool  NodeType = "NCPOOL"
)

// KnownNodeTypes lists the types with a dedicated style, in palette order.
var KnownNodeTypes = []NodeType{
	NodeTypePort,
	NodeTypeRouter,
	NodeTypeNetwork,
	NodeTypeNC,
	NodeTypeNCEP,
	NodeTypeNCPool,
}

// Palette is the 20 color categorical scheme nodes are filled from.
var Palette = [20]string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// Style is the visual encoding of a node type.
type Style struct {
	Radius       float64
	PaletteIndex int
}

// Color returns the fill color for the style.
func (s Style) Color() string {
	return Palette[s.PaletteIndex%len(Palette)]
}

// DefaultStyle applies to unrecognized node types.
var DefaultStyle = Style{Radius: 3, PaletteIndex: 6}

var styles = map[NodeType]Style{
	NodeTypePort:    {Radius: 4, PaletteIndex: 1},
	NodeTypeRouter:  {Radius: 10, PaletteIndex: 2},
	NodeTypeNetwork: {Radius: 15, PaletteIndex: 3},
	NodeTypeNC:      {Radius: 8, PaletteIndex: 4},
	NodeTypeNCEP:    {Radius: 6, PaletteIndex: 5},
	NodeTypeNCPool:  {Radius: 12, PaletteIndex: 7},
}

// StyleFor returns the style of t, or DefaultStyle for unknown types.
func StyleFor(t NodeType) Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return DefaultStyle
}

// Known reports whether t has a dedicated style.
func (t NodeType) Known() bool {
	_, ok := styles[t]
	return ok
}
