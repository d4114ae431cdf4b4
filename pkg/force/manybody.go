package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// Default many-body parameters.
const (
	DefaultChargeStrength = -30.0
	DefaultTheta          = 0.9
	DefaultDistanceMin    = 1.0
)

// ManyBodyForce applies a charge between every pair of nodes. Negative
// strength repels, positive attracts. Distant groups are approximated by
// their center of mass on a Barnes-Hut plane.
type ManyBodyForce struct {
	Strength    float64
	Theta       float64
	DistanceMin float64
	DistanceMax float64

	nodes  []*Node
	bodies []barneshut.Particle2
	rnd    *rand.Rand
}

// NewManyBody creates a repulsive charge with the default parameters.
func NewManyBody() *ManyBodyForce {
	return &ManyBodyForce{
		Strength:    DefaultChargeStrength,
		Theta:       DefaultTheta,
		DistanceMin: DefaultDistanceMin,
		DistanceMax: math.Inf(1),
	}
}

// body adapts a Node to barneshut.Particle2. Every node weighs 1 so the
// mass aggregated by the plane equals the number of bodies in a cell.
type body struct{ n *Node }

func (b *body) Coord2() r2.Vec { return b.n.Pos() }
func (b *body) Mass() float64  { return 1 }

// Initialize wraps the nodes as plane particles.
func (f *ManyBodyForce) Initialize(nodes []*Node, rnd *rand.Rand) {
	f.nodes = nodes
	f.rnd = rnd
	f.bodies = make([]barneshut.Particle2, len(nodes))
	for i, n := range nodes {
		f.bodies[i] = &body{n: n}
	}
}

// Apply accumulates the charge on each node into its velocity.
func (f *ManyBodyForce) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}
	if hasCoincident(f.nodes) {
		f.applyPairwise(alpha)
		return
	}
	plane, err := barneshut.NewPlane(f.bodies)
	if err != nil {
		f.applyPairwise(alpha)
		return
	}

	charge := f.charge(alpha)
	for i, p := range f.bodies {
		v := plane.ForceOn(p, f.Theta, charge)
		f.nodes[i].VX += v.X
		f.nodes[i].VY += v.Y
	}
}

// charge returns the plane force function for the current alpha.
// v points from the node toward the other body (or cell center of mass).
func (f *ManyBodyForce) charge(alpha float64) barneshut.Force2 {
	min2 := f.DistanceMin * f.DistanceMin
	max2 := f.DistanceMax * f.DistanceMax
	return func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		l := r2.Norm2(v)
		if l == 0 || l >= max2 {
			return r2.Vec{}
		}
		if l < min2 {
			l = math.Sqrt(min2 * l)
		}
		return r2.Scale(f.Strength*m2*alpha/l, v)
	}
}

// applyPairwise is the exact O(n²) fallback used when the plane cannot be
// built, e.g. when two nodes sit on the same point.
func (f *ManyBodyForce) applyPairwise(alpha float64) {
	min2 := f.DistanceMin * f.DistanceMin
	max2 := f.DistanceMax * f.DistanceMax
	for _, n := range f.nodes {
		for _, o := range f.nodes {
			if n == o {
				continue
			}
			x, y := o.X-n.X, o.Y-n.Y
			if x == 0 {
				x = jiggle(f.rnd)
			}
			if y == 0 {
				y = jiggle(f.rnd)
			}
			l := x*x + y*y
			if l >= max2 {
				continue
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := f.Strength * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

func hasCoincident(nodes []*Node) bool {
	seen := make(map[r2.Vec]struct{}, len(nodes))
	for _, n := range nodes {
		p := n.Pos()
		if _, ok := seen[p]; ok {
			return true
		}
		seen[p] = struct{}{}
	}
	return false
}
