package chart

// DragStart pins node id at (x, y). The first concurrent drag raises the
// alpha target and wakes the timer so the layout follows the pointer.
// It reports whether the node is bound.
func (c *Chart) DragStart(id string, x, y float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		return false
	}
	if len(c.drags) == 0 {
		c.sim.SetAlphaTarget(dragAlphaTarget)
		if c.timer != nil {
			c.timer.Restart()
		}
	}
	c.drags[id] = true
	n.Pin(x, y)
	return true
}

// Drag moves the pin of a dragged node. It reports whether id is being
// dragged.
func (c *Chart) Drag(id string, x, y float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.drags[id] {
		return false
	}
	c.nodes[id].Pin(x, y)
	return true
}

// DragEnd releases the pin. When no drag remains the alpha target drops
// back to zero and the layout cools down.
func (c *Chart) DragEnd(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.drags[id] {
		return false
	}
	delete(c.drags, id)
	if len(c.drags) == 0 {
		c.sim.SetAlphaTarget(0)
	}
	c.nodes[id].Unpin()
	return true
}

// Hover fires "customHover" with the node. Listeners run on the calling
// goroutine after the chart lock is released. It reports whether the node
// is bound.
func (c *Chart) Hover(id string) bool {
	c.mu.Lock()
	n, ok := c.nodes[id]
	c.mu.Unlock()

	if !ok {
		return false
	}
	// EventHover is declared in New, so Call cannot fail.
	_ = c.events.Call(EventHover, n)
	return true
}

// HoverAt fires "customHover" for the node nearest to (x, y) within its
// drawn radius, in content coordinates.
func (c *Chart) HoverAt(x, y float64) (string, bool) {
	c.mu.Lock()
	var id string
	for _, bn := range c.nodeEls {
		dx, dy := bn.node.X-x, bn.node.Y-y
		r := bn.node.Style().Radius
		if dx*dx+dy*dy <= r*r {
			id = bn.node.ID
			break
		}
	}
	c.mu.Unlock()

	if id == "" {
		return "", false
	}
	return id, c.Hover(id)
}
