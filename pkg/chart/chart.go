package chart

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topochart/pkg/dispatch"
	"github.com/matzehuels/topochart/pkg/force"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/topology"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultWidth             = 600
	DefaultHeight            = 400
	DefaultCollideRadius     = 20
	DefaultCollideIterations = 16

	// EventHover is the event fired by Hover.
	EventHover = "customHover"

	// dragAlphaTarget keeps the layout warm while a node is dragged.
	dragAlphaTarget = 0.3

	// maxSettleTicks bounds Settle when an alpha target keeps the
	// simulation from cooling.
	maxSettleTicks = 1000
)

// DefaultMargin is the inset of the content group inside the svg.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 20, Left: 40}

// Margin is the space between the svg border and the content group.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// =============================================================================
// Options
// =============================================================================

// Option configures a Chart.
type Option func(*Chart)

func WithWidth(v float64) Option  { return func(c *Chart) { c.width = v } }
func WithHeight(v float64) Option { return func(c *Chart) { c.height = v } }
func WithMargin(m Margin) Option  { return func(c *Chart) { c.margin = m } }
func WithSeed(seed uint64) Option { return func(c *Chart) { c.seed = seed } }
func WithLogger(l *log.Logger) Option {
	return func(c *Chart) { c.logger = l }
}

// WithCollide sets the collision radius and the number of relaxation
// passes per tick.
func WithCollide(radius float64, iterations int) Option {
	return func(c *Chart) {
		c.collideRadius = radius
		c.collideIterations = iterations
	}
}

// WithHoverEndpoint makes the embedded client script POST hovered node IDs
// to url. A "{node}" placeholder in url is replaced by the node ID.
func WithHoverEndpoint(url string) Option {
	return func(c *Chart) { c.hoverEndpoint = url }
}

// =============================================================================
// Chart
// =============================================================================

// Chart is a force-directed topology diagram.
type Chart struct {
	mu sync.Mutex

	width, height     float64
	margin            Margin
	collideRadius     float64
	collideIterations int
	seed              uint64
	hoverEndpoint     string
	dirty             bool

	logger *log.Logger
	events *dispatch.Dispatcher

	sim     *force.Simulation
	links   *force.LinkForce
	center  *force.CenterForce
	collide *force.CollideForce
	timer   *force.Timer

	// Current binding.
	container *scene.Element
	svg       *scene.Element
	data      *topology.Dataset
	nodes     map[string]*topology.Node
	nodeEls   []boundNode
	linkEls   []boundLink
	drags     map[string]bool
}

type boundNode struct {
	node *topology.Node
	el   *scene.Element
}

type boundLink struct {
	source, target *topology.Node
	el             *scene.Element
}

// New creates a chart. Nothing is drawn until Render is called.
func New(opts ...Option) *Chart {
	c := &Chart{
		width:             DefaultWidth,
		height:            DefaultHeight,
		margin:            DefaultMargin,
		collideRadius:     DefaultCollideRadius,
		collideIterations: DefaultCollideIterations,
		events:            dispatch.New(EventHover),
		drags:             make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	w, h := c.inner()
	c.links = force.NewLink(nil)
	c.center = force.NewCenter(w/2, h/2)
	c.collide = force.NewCollide(force.ConstantRadius(c.collideRadius))
	c.collide.Iterations = c.collideIterations

	var simOpts []force.Option
	if c.seed != 0 {
		simOpts = append(simOpts, force.WithSeed(c.seed))
	}
	c.sim = force.New(nil, simOpts...)
	c.sim.SetForce("link", c.links)
	c.sim.SetForce("charge", force.NewManyBody())
	c.sim.SetForce("collide", c.collide)
	c.sim.SetForce("center", c.center)
	c.sim.SetForce("y", force.NewY(0))
	c.sim.SetForce("x", force.NewX(0))
	c.sim.On(force.EventTick, c.ticked)
	return c
}

// inner returns the content size: the svg size minus margins.
func (c *Chart) inner() (w, h float64) {
	return c.width - c.margin.Left - c.margin.Right,
		c.height - c.margin.Top - c.margin.Bottom
}

// =============================================================================
// Accessors
// =============================================================================

// Width returns the svg width.
func (c *Chart) Width() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// SetWidth changes the svg width and marks the chart dirty.
func (c *Chart) SetWidth(v float64) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = v
	c.dirty = true
	return c
}

// Height returns the svg height.
func (c *Chart) Height() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// SetHeight changes the svg height and marks the chart dirty.
func (c *Chart) SetHeight(v float64) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height = v
	c.dirty = true
	return c
}

// Margin returns the content inset.
func (c *Chart) Margin() Margin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.margin
}

// SetMargin changes the content inset and marks the chart dirty.
func (c *Chart) SetMargin(m Margin) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.margin = m
	c.dirty = true
	return c
}

// InnerSize returns the size of the content group.
func (c *Chart) InnerSize() (w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner()
}

// Dirty reports whether size attributes are pending for the next Render.
func (c *Chart) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Alpha returns the current simulation energy.
func (c *Chart) Alpha() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Alpha()
}

// Data returns the bound dataset, or nil before the first Render.
func (c *Chart) Data() *topology.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Snapshot returns a deep copy of the bound dataset taken under the chart
// lock, so it is safe while the timer runs. It is nil before the first
// Render.
func (c *Chart) Snapshot() *topology.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	return c.data.Clone()
}

// Node returns the bound node with the given ID.
func (c *Chart) Node(id string) (*topology.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[id]
	return n, ok
}

// On registers or removes (nil fn) a listener for "customHover".
// Typenames may carry a ".name" suffix.
func (c *Chart) On(typename string, fn dispatch.Listener) error {
	return c.events.On(typename, fn)
}
