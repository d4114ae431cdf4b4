package force

import (
	"math"
	"math/rand/v2"
)

// CollideForce treats nodes as circles and pushes overlapping pairs apart.
type CollideForce struct {
	Radius     func(n *Node) float64
	Strength   float64
	Iterations int

	nodes []*Node
	radii []float64
	rnd   *rand.Rand
}

// NewCollide creates a collision force with a per-node radius.
func NewCollide(radius func(n *Node) float64) *CollideForce {
	return &CollideForce{Radius: radius, Strength: 1, Iterations: 1}
}

// ConstantRadius returns a radius function that ignores the node.
func ConstantRadius(r float64) func(*Node) float64 {
	return func(*Node) float64 { return r }
}

// Initialize caches the radius of every node.
func (f *CollideForce) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.nodes = nodes
	f.rnd = rnd
	f.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		if f.Radius != nil {
			f.radii[i] = f.Radius(n)
		} else {
			f.radii[i] = 1
		}
	}
}

// Apply separates overlapping circles, looking ahead by one velocity step.
// Each pair moves in inverse proportion to its squared radius.
func (f *CollideForce) Apply(alpha float64) {
	iterations := max(f.Iterations, 1)
	for k := 0; k < iterations; k++ {
		for i, ni := range f.nodes {
			ri := f.radii[i]
			ri2 := ri * ri
			xi := ni.X + ni.VX
			yi := ni.Y + ni.VY
			for j := i + 1; j < len(f.nodes); j++ {
				nj := f.nodes[j]
				rj := f.radii[j]
				r := ri + rj
				x := xi - nj.X - nj.VX
				y := yi - nj.Y - nj.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(f.rnd)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.rnd)
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * f.Strength
				x *= l
				y *= l

				rj2 := rj * rj
				w := rj2 / (ri2 + rj2)
				ni.VX += x * w
				ni.VY += y * w
				w = 1 - w
				nj.VX -= x * w
				nj.VY -= y * w
			}
		}
	}
}
