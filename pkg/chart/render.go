package chart

import (
	"github.com/matzehuels/topochart/pkg/force"
	"github.com/matzehuels/topochart/pkg/scene"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Element classes.
const (
	ClassChart = "topologyChart"
	ClassLinks = "links"
	ClassNodes = "nodes"
	ClassLink  = "link"
	ClassNode  = "node"
	ClassLabel = "label"
)

// Render draws data into container. A nil dataset removes the svg the chart
// drew there and detaches the chart from it; doing so twice is harmless.
func (c *Chart) Render(container *scene.Element, data *topology.Dataset) {
	if container == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if data == nil {
		c.teardown(container)
		return
	}

	w, h := c.inner()
	sized := c.dirty

	svg := ensure(container, "svg", "", sized, func(el *scene.Element, created bool) {
		if created {
			c.logger.Debug("new svg created")
			el.SetAttr("xmlns", "http://www.w3.org/2000/svg")
		}
		el.SetNum("width", c.width).SetNum("height", c.height)
	})
	g := ensure(svg, "g", ClassChart, sized, func(el *scene.Element, _ bool) {
		el.SetNum("width", w).SetNum("height", h)
		el.SetAttrf("transform", "translate(%s,%s)", scene.FormatNum(c.margin.Left), scene.FormatNum(c.margin.Top))
	})
	linkLayer := ensure(g, "g", ClassLinks, sized, func(el *scene.Element, _ bool) {
		el.SetNum("width", w).SetNum("height", h)
	})
	nodeLayer := ensure(g, "g", ClassNodes, sized, func(el *scene.Element, _ bool) {
		el.SetNum("width", w).SetNum("height", h)
	})
	c.ensureAssets(svg)

	if c.container != nil && c.container != container {
		c.logger.Debug("chart moved to a new container")
	}
	c.container = container
	c.svg = svg

	changed := c.bind(data, linkLayer, nodeLayer)

	if sized {
		c.center.X, c.center.Y = w/2, h/2
	}
	if changed {
		c.sim.SetAlpha(1)
		if c.timer != nil {
			c.timer.Restart()
		}
	}
	c.ticked()
	c.dirty = false
}

// ensure returns the first child matching tag and class, creating it when
// missing. Size dependent attributes are written by size when the element
// is new or the chart is dirty.
func ensure(parent *scene.Element, tag, class string, sized bool, size func(el *scene.Element, created bool)) *scene.Element {
	sel := tag
	if class != "" {
		sel += "." + class
	}
	if found := parent.ChildrenMatching(sel); len(found) > 0 {
		if sized {
			size(found[0], false)
		}
		return found[0]
	}
	el := parent.Append(tag)
	if class != "" {
		el.Classed(class, true)
	}
	size(el, true)
	return el
}

// teardown removes the svg from container and releases the binding when
// the chart was bound there. Called with c.mu held.
func (c *Chart) teardown(container *scene.Element) {
	for _, svg := range container.ChildrenMatching("svg") {
		svg.Remove()
	}
	if c.container != container {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.container = nil
	c.svg = nil
	c.data = nil
	c.nodes = nil
	c.nodeEls = nil
	c.linkEls = nil
	clear(c.drags)
	c.links.SetLinks(nil)
	c.sim.SetNodes(nil)
}

// bind joins the dataset onto the layers and hands it to the simulation.
// It reports whether the node or link identity set changed.
func (c *Chart) bind(data *topology.Dataset, linkLayer, nodeLayer *scene.Element) bool {
	prev := c.nodes
	index := data.Index()

	// Survivors keep their simulation state even when the caller passes
	// fresh node values.
	for id, n := range index {
		if old, ok := prev[id]; ok && old != n {
			n.Node = old.Node
		}
	}

	nodes := make([]*topology.Node, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	nodeDiff := scene.Reconcile(nodeLayer, "g", ClassNode, ids, func(el *scene.Element, _ int) {
		el.Append("circle")
		el.Append("text").Classed(ClassLabel, true).SetAttr("dy", "0.35em")
		el.Append("title")
	})

	c.nodeEls = c.nodeEls[:0]
	simNodes := make([]*force.Node, len(nodes))
	for i, n := range nodes {
		el := nodeDiff.Merged[i]
		styleNode(el, n)
		c.nodeEls = append(c.nodeEls, boundNode{node: n, el: el})
		simNodes[i] = &n.Node
	}

	var keys []string
	var resolved []boundLink
	allKeys := data.LinkKeys()
	for i, l := range data.Links {
		if l == nil {
			continue
		}
		s, t := index[l.Source], index[l.Target]
		if s == nil || t == nil {
			continue
		}
		keys = append(keys, allKeys[i])
		resolved = append(resolved, boundLink{source: s, target: t})
	}
	linkDiff := scene.Reconcile(linkLayer, "line", ClassLink, keys, func(el *scene.Element, _ int) {
		el.SetAttr("stroke", "black")
	})

	c.linkEls = c.linkEls[:0]
	simLinks := make([]force.Link, len(resolved))
	for i, bl := range resolved {
		bl.el = linkDiff.Merged[i]
		bl.el.SetAttr("data-source", bl.source.ID).SetAttr("data-target", bl.target.ID)
		c.linkEls = append(c.linkEls, bl)
		simLinks[i] = force.Link{Source: &bl.source.Node, Target: &bl.target.Node}
	}

	for id := range c.drags {
		if _, ok := index[id]; !ok {
			delete(c.drags, id)
		}
	}
	if len(c.drags) == 0 {
		c.sim.SetAlphaTarget(0)
	}

	c.data = data
	c.nodes = index
	c.links.SetLinks(simLinks)
	c.sim.SetNodes(simNodes)

	c.logger.Debug("bound topology",
		"nodes", len(nodes), "links", len(resolved),
		"entered", len(nodeDiff.Entered)+len(linkDiff.Entered),
		"exited", len(nodeDiff.Exited)+len(linkDiff.Exited))

	return prev == nil ||
		len(nodeDiff.Entered) > 0 || len(nodeDiff.Exited) > 0 ||
		len(linkDiff.Entered) > 0 || len(linkDiff.Exited) > 0
}

// styleNode writes the type dependent attributes of a node group.
func styleNode(el *scene.Element, n *topology.Node) {
	st := n.Style()
	el.Datum = n
	el.SetAttr("data-id", n.ID)
	el.SetAttr("data-type", string(n.Type))
	if circle := el.Select("circle"); circle != nil {
		circle.SetNum("r", st.Radius).SetAttr("fill", st.Color())
	}
	if text := el.Select("text"); text != nil {
		text.SetNum("dx", st.Radius+3).SetText(n.DisplayLabel())
	}
	if title := el.Select("title"); title != nil {
		title.SetText(n.ID + " (" + string(n.Type) + ")")
	}
}

// ticked copies simulation coordinates into the elements. It runs inside
// every simulation step, with c.mu held.
func (c *Chart) ticked() {
	if c.svg == nil {
		return
	}
	for _, bl := range c.linkEls {
		bl.el.SetNum("x1", bl.source.X).SetNum("y1", bl.source.Y)
		bl.el.SetNum("x2", bl.target.X).SetNum("y2", bl.target.Y)
	}
	for _, bn := range c.nodeEls {
		bn.el.SetAttrf("transform", "translate(%s,%s)", scene.FormatNum(bn.node.X), scene.FormatNum(bn.node.Y))
	}
}
