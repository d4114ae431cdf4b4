// Package force implements a velocity Verlet force-directed layout simulation.
//
// # Overview
//
// The simulation follows the d3-force model: each node carries a position
// (X, Y) and a velocity (VX, VY). A cooling parameter alpha starts at 1 and
// decays toward AlphaTarget; every tick the registered forces adjust node
// velocities scaled by alpha, velocities are damped by the velocity decay
// and positions are integrated. When alpha drops below AlphaMin the
// simulation is considered at rest and the "end" event fires.
//
// # Forces
//
//   - [LinkForce]: spring between linked nodes (distance 30 by default)
//   - [ManyBodyForce]: charge between all nodes, Barnes-Hut approximated
//     with gonum's spatial/barneshut plane
//   - [CollideForce]: treats nodes as circles and resolves overlaps
//   - [CenterForce]: translates the layout so its mean sits on a point
//   - [PositionForce]: pulls nodes toward a fixed x or y coordinate
//
// # Pinning
//
// A node with FX/FY set is pinned: its position is snapped to the pin and
// its velocity zeroed on every tick. This is how dragging works.
//
// # Concurrency
//
// A [Simulation] is not safe for concurrent use. Callers serialize access,
// typically by handing the same [sync.Locker] to [NewTimer] that guards
// every other mutation of the nodes.
//
//	sim := force.New(nodes, force.WithSeed(7))
//	sim.SetForce("link", force.NewLink(links))
//	sim.SetForce("charge", force.NewManyBody())
//	sim.SetForce("center", force.NewCenter(300, 200))
//	for sim.Step() {
//	}
package force
