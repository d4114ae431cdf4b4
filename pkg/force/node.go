package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Node is the physical state the simulation reads and writes.
// Higher level node types embed it.
type Node struct {
	Index int      `json:"-" yaml:"-" bson:"-"`
	X     float64  `json:"x" yaml:"x,omitempty" bson:"x"`
	Y     float64  `json:"y" yaml:"y,omitempty" bson:"y"`
	VX    float64  `json:"vx,omitempty" yaml:"vx,omitempty" bson:"vx,omitempty"`
	VY    float64  `json:"vy,omitempty" yaml:"vy,omitempty" bson:"vy,omitempty"`
	FX    *float64 `json:"fx,omitempty" yaml:"fx,omitempty" bson:"fx,omitempty"`
	FY    *float64 `json:"fy,omitempty" yaml:"fy,omitempty" bson:"fy,omitempty"`

	placed bool
}

// Pos returns the node position as a vector.
func (n *Node) Pos() r2.Vec { return r2.Vec{X: n.X, Y: n.Y} }

// Pin fixes the node at (x, y) until Unpin is called.
func (n *Node) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
}

// Unpin releases a pinned node back to the forces.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Pinned reports whether either coordinate is fixed.
func (n *Node) Pinned() bool { return n.FX != nil || n.FY != nil }

// Placed reports whether the node already has a position, either assigned
// by a simulation or supplied by the caller.
func (n *Node) Placed() bool {
	return n.placed || n.X != 0 || n.Y != 0
}

// initialize assigns the phyllotaxis start position to unplaced nodes and
// clears invalid velocities.
func (n *Node) initialize(i int) {
	n.Index = i
	if n.FX != nil {
		n.X = *n.FX
	}
	if n.FY != nil {
		n.Y = *n.FY
	}
	if !n.Placed() || math.IsNaN(n.X) || math.IsNaN(n.Y) {
		radius := initialRadius * math.Sqrt(float64(i))
		angle := float64(i) * initialAngle
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
	}
	if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
		n.VX, n.VY = 0, 0
	}
	n.placed = true
}
