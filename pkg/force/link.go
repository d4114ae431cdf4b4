package force

import (
	"math"
	"math/rand/v2"
)

// DefaultLinkDistance is the rest length of a link spring.
const DefaultLinkDistance = 30.0

// Link connects two simulated nodes.
type Link struct {
	Source *Node
	Target *Node
}

// LinkForce pulls linked nodes toward DefaultLinkDistance apart.
//
// By default the spring strength is 1/min(degree(source), degree(target)),
// which keeps hubs from being yanked around, and each endpoint moves in
// proportion to the other endpoint's degree.
type LinkForce struct {
	// Distance returns the rest length of a link. Nil means DefaultLinkDistance.
	Distance func(l Link, i int) float64
	// Strength returns the spring constant of a link. Nil means the degree based default.
	Strength func(l Link, i int) float64
	// Iterations is the number of relaxation passes per tick.
	Iterations int

	links     []Link
	count     map[*Node]int
	bias      []float64
	strengths []float64
	distances []float64
	rnd       *rand.Rand
}

// NewLink creates a link force over links.
func NewLink(links []Link) *LinkForce {
	return &LinkForce{links: links, Iterations: 1}
}

// Links returns the links the force acts on.
func (f *LinkForce) Links() []Link { return f.links }

// SetLinks replaces the links; call Simulation.SetNodes or SetForce afterwards
// so the force is reinitialized against the current nodes.
func (f *LinkForce) SetLinks(links []Link) { f.links = links }

// Initialize computes degrees, biases, strengths and distances.
func (f *LinkForce) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.rnd = rnd
	f.count = make(map[*Node]int, len(nodes))
	for _, l := range f.links {
		f.count[l.Source]++
		f.count[l.Target]++
	}

	f.bias = make([]float64, len(f.links))
	f.strengths = make([]float64, len(f.links))
	f.distances = make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := float64(f.count[l.Source]), float64(f.count[l.Target])
		f.bias[i] = cs / (cs + ct)

		if f.Strength != nil {
			f.strengths[i] = f.Strength(l, i)
		} else {
			f.strengths[i] = 1 / math.Min(cs, ct)
		}
		if f.Distance != nil {
			f.distances[i] = f.Distance(l, i)
		} else {
			f.distances[i] = DefaultLinkDistance
		}
	}
}

// Apply moves each link's endpoints toward the rest distance.
func (f *LinkForce) Apply(alpha float64) {
	iterations := max(f.Iterations, 1)
	for k := 0; k < iterations; k++ {
		for i, l := range f.links {
			s, t := l.Source, l.Target
			if s == nil || t == nil || s == t {
				continue
			}
			x := t.X + t.VX - s.X - s.VX
			if x == 0 {
				x = jiggle(f.rnd)
			}
			y := t.Y + t.VY - s.Y - s.VY
			if y == 0 {
				y = jiggle(f.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.distances[i]) / d * alpha * f.strengths[i]
			x *= d
			y *= d

			b := f.bias[i]
			t.VX -= x * b
			t.VY -= y * b
			b = 1 - b
			s.VX += x * b
			s.VY += y * b
		}
	}
}
