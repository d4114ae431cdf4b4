package force

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// CenterForce translates all nodes so their mean position lands on (X, Y).
// It moves positions directly and does not depend on alpha.
type CenterForce struct {
	X, Y     float64
	Strength float64

	nodes []*Node
}

// NewCenter creates a centering force at (x, y).
func NewCenter(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y, Strength: 1}
}

func (f *CenterForce) Initialize(nodes []*Node, _ *rand.Rand) { f.nodes = nodes }

func (f *CenterForce) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sum r2.Vec
	for _, n := range f.nodes {
		sum = r2.Add(sum, n.Pos())
	}
	mean := r2.Scale(1/float64(len(f.nodes)), sum)
	shift := r2.Scale(f.Strength, r2.Sub(mean, r2.Vec{X: f.X, Y: f.Y}))
	for _, n := range f.nodes {
		n.X -= shift.X
		n.Y -= shift.Y
	}
}

// Axis selects the coordinate a PositionForce acts on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// DefaultPositionStrength is the pull of PositionForce per tick.
const DefaultPositionStrength = 0.1

// PositionForce pulls every node toward a target coordinate on one axis.
type PositionForce struct {
	Axis     Axis
	Target   float64
	Strength float64

	nodes []*Node
}

// NewX pulls nodes toward x.
func NewX(x float64) *PositionForce {
	return &PositionForce{Axis: AxisX, Target: x, Strength: DefaultPositionStrength}
}

// NewY pulls nodes toward y.
func NewY(y float64) *PositionForce {
	return &PositionForce{Axis: AxisY, Target: y, Strength: DefaultPositionStrength}
}

func (f *PositionForce) Initialize(nodes []*Node, _ *rand.Rand) { f.nodes = nodes }

func (f *PositionForce) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, n := range f.nodes {
		if f.Axis == AxisX {
			n.VX += (f.Target - n.X) * k
		} else {
			n.VY += (f.Target - n.Y) * k
		}
	}
}
