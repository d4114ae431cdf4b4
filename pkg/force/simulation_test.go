package force

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"
)

func newNodes(n int) []*Node {
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{}
	}
	return nodes
}

func dist(a, b *Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestPhyllotaxisPlacement(t *testing.T) {
	nodes := newNodes(3)
	New(nodes)

	if nodes[0].X != 0 || nodes[0].Y != 0 {
		t.Errorf("node 0 = (%v, %v), want origin", nodes[0].X, nodes[0].Y)
	}
	for i := 1; i < 3; i++ {
		r := math.Hypot(nodes[i].X, nodes[i].Y)
		want := initialRadius * math.Sqrt(float64(i))
		if math.Abs(r-want) > 1e-9 {
			t.Errorf("node %d radius = %v, want %v", i, r, want)
		}
		if nodes[i].Index != i {
			t.Errorf("node %d Index = %d", i, nodes[i].Index)
		}
	}
}

func TestPlacedNodesKeepPosition(t *testing.T) {
	n := &Node{X: 50, Y: -20}
	New([]*Node{{}, n})
	if n.X != 50 || n.Y != -20 {
		t.Errorf("placed node moved to (%v, %v)", n.X, n.Y)
	}
}

func TestStepEndsAfterCooling(t *testing.T) {
	sim := New(newNodes(2))
	var ticks, ends int
	sim.On(EventTick, func() { ticks++ })
	sim.On(EventEnd, func() { ends++ })

	steps := 0
	for sim.Step() {
		steps++
		if steps > 1000 {
			t.Fatal("simulation never cooled")
		}
	}

	if ends != 1 {
		t.Errorf("end events = %d, want 1", ends)
	}
	if ticks != steps+1 {
		t.Errorf("tick events = %d, want %d", ticks, steps+1)
	}
	// alpha 1 -> 0.001 with the default decay takes 300 ticks.
	if ticks < 295 || ticks > 305 {
		t.Errorf("ticks to rest = %d, want ~300", ticks)
	}
	if !sim.Done() {
		t.Error("Done() = false after end")
	}
}

func TestAlphaTargetKeepsRunning(t *testing.T) {
	sim := New(newNodes(1))
	sim.SetAlphaTarget(0.3)
	for i := 0; i < 2000; i++ {
		if !sim.Step() {
			t.Fatalf("simulation ended at step %d with alphaTarget 0.3", i)
		}
	}
	if math.Abs(sim.Alpha()-0.3) > 1e-3 {
		t.Errorf("alpha = %v, want ~0.3", sim.Alpha())
	}
}

func TestPinnedNodeStaysPut(t *testing.T) {
	nodes := newNodes(4)
	sim := New(nodes)
	sim.SetForce("charge", NewManyBody())
	nodes[2].Pin(123, -45)

	sim.Tick(20)

	if nodes[2].X != 123 || nodes[2].Y != -45 {
		t.Errorf("pinned node at (%v, %v), want (123, -45)", nodes[2].X, nodes[2].Y)
	}
	if nodes[2].VX != 0 || nodes[2].VY != 0 {
		t.Errorf("pinned node velocity = (%v, %v), want zero", nodes[2].VX, nodes[2].VY)
	}

	nodes[2].Unpin()
	if nodes[2].Pinned() {
		t.Error("Pinned() = true after Unpin")
	}
}

func TestLinkForcePullsTowardDistance(t *testing.T) {
	a := &Node{X: -200, Y: 0}
	b := &Node{X: 200, Y: 1}
	sim := New([]*Node{a, b})
	sim.SetForce("link", NewLink([]Link{{Source: a, Target: b}}))

	sim.Tick(300)

	if d := dist(a, b); math.Abs(d-DefaultLinkDistance) > 1 {
		t.Errorf("link length = %v, want ~%v", d, DefaultLinkDistance)
	}
}

func TestManyBodyRepels(t *testing.T) {
	for _, tc := range []struct {
		name  string
		nodes []*Node
	}{
		{"plane", []*Node{{X: -1, Y: 0}, {X: 1, Y: 0.5}, {X: 0, Y: 2}}},
		{"coincident", []*Node{{X: 5, Y: 5}, {X: 5, Y: 5}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			before := dist(tc.nodes[0], tc.nodes[1])
			sim := New(tc.nodes, WithSeed(1))
			sim.SetForce("charge", NewManyBody())
			sim.Tick(10)
			if after := dist(tc.nodes[0], tc.nodes[1]); after <= before {
				t.Errorf("distance %v -> %v, want growth", before, after)
			}
		})
	}
}

func TestCollideSeparatesOverlap(t *testing.T) {
	a := &Node{X: 0, Y: 0}
	b := &Node{X: 5, Y: 0}
	sim := New([]*Node{a, b})
	c := NewCollide(ConstantRadius(20))
	c.Iterations = 16
	sim.SetForce("collide", c)

	sim.Tick(50)

	if d := dist(a, b); d < 39 {
		t.Errorf("distance = %v, want >= ~40", d)
	}
}

func TestCenterForce(t *testing.T) {
	nodes := []*Node{{X: 10, Y: 10}, {X: 30, Y: 50}}
	sim := New(nodes)
	sim.SetForce("center", NewCenter(100, 200))
	sim.Tick(1)

	mx := (nodes[0].X + nodes[1].X) / 2
	my := (nodes[0].Y + nodes[1].Y) / 2
	if math.Abs(mx-100) > 1e-9 || math.Abs(my-200) > 1e-9 {
		t.Errorf("mean = (%v, %v), want (100, 200)", mx, my)
	}
}

func TestPositionForce(t *testing.T) {
	n := &Node{X: 100, Y: 100}
	sim := New([]*Node{n})
	sim.SetForce("x", NewX(0))
	sim.SetForce("y", NewY(0))
	sim.Tick(300)

	if math.Abs(n.X) > 5 || math.Abs(n.Y) > 5 {
		t.Errorf("node at (%v, %v), want near origin", n.X, n.Y)
	}
}

func TestSetForceRemove(t *testing.T) {
	sim := New(newNodes(2))
	sim.SetForce("charge", NewManyBody())
	if _, ok := sim.Force("charge"); !ok {
		t.Fatal("charge force missing")
	}
	sim.SetForce("charge", nil)
	if _, ok := sim.Force("charge"); ok {
		t.Error("charge force still present after removal")
	}
}

func TestFind(t *testing.T) {
	nodes := []*Node{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 100, Y: 100}}
	sim := New(nodes)

	if got := sim.Find(9, 1, 0); got != nodes[1] {
		t.Errorf("Find(9,1) = %+v, want node 1", got)
	}
	if got := sim.Find(50, 50, 5); got != nil {
		t.Errorf("Find(50,50,5) = %+v, want nil", got)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	run := func() []*Node {
		nodes := []*Node{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 3, Y: 0}}
		sim := New(nodes, WithSeed(42))
		sim.SetForce("charge", NewManyBody())
		sim.SetForce("collide", NewCollide(ConstantRadius(5)))
		sim.Tick(30)
		return nodes
	}
	a, b := run(), run()
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Errorf("node %d differs: (%v,%v) vs (%v,%v)", i, a[i].X, a[i].Y, b[i].X, b[i].Y)
		}
	}
}

func TestTimerRunsToEndAndRestarts(t *testing.T) {
	var mu sync.Mutex
	sim := New(newNodes(3), WithAlphaDecay(0.5))

	ended := make(chan struct{}, 4)
	sim.On(EventEnd, func() { ended <- struct{}{} })

	timer := NewTimer(sim, time.Millisecond, &mu)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer.Start(ctx)

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never reached end")
	}

	mu.Lock()
	sim.SetAlpha(1)
	mu.Unlock()
	timer.Restart()

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted timer never reached end")
	}

	timer.Stop()
	timer.Stop()
	timer.Wait()
}
