package force

import (
	"math"
	"math/rand/v2"
)

// Default simulation parameters (d3-force compatible).
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4

	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// DefaultAlphaDecay cools alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Event names emitted by Step.
type Event string

const (
	EventTick Event = "tick"
	EventEnd  Event = "end"
)

// Force adjusts node velocities once per tick.
type Force interface {
	// Initialize is called whenever the node set changes.
	Initialize(nodes []*Node, rnd *rand.Rand)
	// Apply nudges velocities, scaled by the current alpha.
	Apply(alpha float64)
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed makes jiggle and any other randomness reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rnd = newRand(seed) }
}

// WithAlphaMin overrides the rest threshold.
func WithAlphaMin(v float64) Option {
	return func(s *Simulation) { s.alphaMin = v }
}

// WithAlphaDecay overrides the cooling rate.
func WithAlphaDecay(v float64) Option {
	return func(s *Simulation) { s.alphaDecay = v }
}

// WithVelocityDecay overrides the friction applied each tick.
func WithVelocityDecay(v float64) Option {
	return func(s *Simulation) { s.velocityDecay = 1 - v }
}

// Simulation advances node positions under a set of named forces.
type Simulation struct {
	nodes  []*Node
	forces map[string]Force
	order  []string

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64 // stored as the retained fraction (1 - decay)

	rnd       *rand.Rand
	listeners map[Event][]func()
}

// New creates a simulation over nodes. Nodes without a position are placed
// on a phyllotaxis spiral around the origin.
func New(nodes []*Node, opts ...Option) *Simulation {
	s := &Simulation{
		forces:        make(map[string]Force),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		rnd:           newRand(0),
		listeners:     make(map[Event][]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.SetNodes(nodes)
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// =============================================================================
// Nodes and forces
// =============================================================================

// Nodes returns the simulated nodes.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// SetNodes replaces the node set and reinitializes every force.
func (s *Simulation) SetNodes(nodes []*Node) {
	s.nodes = nodes
	for i, n := range nodes {
		n.initialize(i)
	}
	for _, name := range s.order {
		s.forces[name].Initialize(s.nodes, s.rnd)
	}
}

// Force returns the force registered under name.
func (s *Simulation) Force(name string) (Force, bool) {
	f, ok := s.forces[name]
	return f, ok
}

// SetForce registers f under name, replacing any previous force with that
// name. A nil force removes the entry. Forces apply in registration order.
func (s *Simulation) SetForce(name string, f Force) {
	if f == nil {
		delete(s.forces, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	if _, exists := s.forces[name]; !exists {
		s.order = append(s.order, name)
	}
	s.forces[name] = f
	f.Initialize(s.nodes, s.rnd)
}

// =============================================================================
// Alpha
// =============================================================================

func (s *Simulation) Alpha() float64           { return s.alpha }
func (s *Simulation) SetAlpha(v float64)       { s.alpha = v }
func (s *Simulation) AlphaMin() float64        { return s.alphaMin }
func (s *Simulation) AlphaDecay() float64      { return s.alphaDecay }
func (s *Simulation) AlphaTarget() float64     { return s.alphaTarget }
func (s *Simulation) SetAlphaTarget(v float64) { s.alphaTarget = v }

// VelocityDecay returns the friction factor in [0, 1].
func (s *Simulation) VelocityDecay() float64 { return 1 - s.velocityDecay }

// Done reports whether alpha has cooled below AlphaMin.
func (s *Simulation) Done() bool { return s.alpha < s.alphaMin }

// =============================================================================
// Events
// =============================================================================

// On registers fn for the given event. Listeners run synchronously inside
// Step and must not call Step themselves.
func (s *Simulation) On(ev Event, fn func()) {
	s.listeners[ev] = append(s.listeners[ev], fn)
}

func (s *Simulation) emit(ev Event) {
	for _, fn := range s.listeners[ev] {
		fn()
	}
}

// =============================================================================
// Stepping
// =============================================================================

// Tick advances the simulation by n ticks without emitting events.
func (s *Simulation) Tick(n int) {
	for k := 0; k < n; k++ {
		s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

		for _, name := range s.order {
			s.forces[name].Apply(s.alpha)
		}

		for _, node := range s.nodes {
			if node.FX == nil {
				node.VX *= s.velocityDecay
				node.X += node.VX
			} else {
				node.X = *node.FX
				node.VX = 0
			}
			if node.FY == nil {
				node.VY *= s.velocityDecay
				node.Y += node.VY
			} else {
				node.Y = *node.FY
				node.VY = 0
			}
		}
	}
}

// Step performs one timer step: a single tick followed by the "tick" event.
// When alpha falls below AlphaMin the "end" event fires and Step returns
// false; the caller stops stepping until the simulation is reheated.
func (s *Simulation) Step() bool {
	s.Tick(1)
	s.emit(EventTick)
	if s.alpha < s.alphaMin {
		s.emit(EventEnd)
		return false
	}
	return true
}

// Find returns the node closest to (x, y) within radius. A radius <= 0
// means unbounded. Returns nil when no node qualifies.
func (s *Simulation) Find(x, y, radius float64) *Node {
	best := math.Inf(1)
	if radius > 0 {
		best = radius * radius
	}
	var closest *Node
	for _, n := range s.nodes {
		dx, dy := x-n.X, y-n.Y
		if d2 := dx*dx + dy*dy; d2 < best {
			best = d2
			closest = n
		}
	}
	return closest
}

// jiggle returns a tiny random offset used to separate coincident nodes.
func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
