package chart

import (
	"context"
	"time"

	"github.com/matzehuels/topochart/pkg/force"
)

// Settle runs the simulation to rest and updates the drawing once. It
// returns the number of ticks taken. While a drag holds the alpha target
// up, it stops after a fixed bound.
func (c *Chart) Settle() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for !c.sim.Done() && n < maxSettleTicks {
		c.sim.Tick(1)
		n++
	}
	c.ticked()
	return n
}

// Step advances the layout by one timer step, updating the drawing. It
// reports whether the simulation is still cooling.
func (c *Chart) Step() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Step()
}

// Reheat sets alpha back to 1 and wakes the timer.
func (c *Chart) Reheat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sim.SetAlpha(1)
	if c.timer != nil {
		c.timer.Restart()
	}
}

// Start steps the layout on a background goroutine every interval until
// ctx is cancelled or Stop is called. Starting a running chart is a no-op.
func (c *Chart) Start(ctx context.Context, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timerActive() {
		return
	}
	c.timer = force.NewTimer(c.sim, interval, &c.mu)
	c.timer.Start(ctx)
}

// Running reports whether the timer goroutine is alive.
func (c *Chart) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timerActive()
}

// timerActive reports whether a started timer has not exited yet, for
// example because its context was cancelled. Called with c.mu held.
func (c *Chart) timerActive() bool {
	if c.timer == nil {
		return false
	}
	select {
	case <-c.timer.Done():
		return false
	default:
		return true
	}
}

// Stop halts the timer and waits for its goroutine to exit.
func (c *Chart) Stop() {
	c.mu.Lock()
	t := c.timer
	c.timer = nil
	c.mu.Unlock()

	if t != nil {
		t.Stop()
		t.Wait()
	}
}

// Close stops the timer and removes the drawing from its container.
func (c *Chart) Close() {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container != nil {
		c.teardown(c.container)
	}
}
