// Package chart renders network topologies as force-directed diagrams.
//
// A [Chart] is configured once and then rendered into a container element
// any number of times. Each render reconciles the drawing against the new
// dataset: one svg surface per container, one content group, a links layer
// with a line per link and a nodes layer with a group (circle and label)
// per node. Repeated renders never duplicate structure; they add and remove
// only the elements whose identity changed.
//
//	c := chart.New(chart.WithWidth(800), chart.WithHeight(500))
//	c.On("customHover.log", func(v any) {
//	    n := v.(*topology.Node)
//	    logger.Info("hover", "id", n.ID, "type", n.Type)
//	})
//	root := scene.New("div")
//	c.Render(root, data)
//	c.Settle()
//	svg := c.SVG()
//
// # Layout
//
// Node positions come from a [force.Simulation] with link, many-body,
// collide, center, x and y forces. [Chart.Settle] runs it synchronously to
// rest for static output; [Chart.Start] steps it on a timer goroutine for
// live views. Every step writes the new coordinates back into the
// elements: line endpoints and node group translations.
//
// Nodes that survive a re-render keep their position, and the simulation
// is reheated only when the set of nodes or links changed.
//
// # Size
//
// Width and height changes are lazy. The setters mark the chart dirty and
// the next Render rewrites the size dependent attributes and moves the
// centering force, then clears the flag.
//
// # Interaction
//
// [Chart.DragStart], [Chart.Drag] and [Chart.DragEnd] pin a node to the
// pointer while it is dragged. The first active drag raises the alpha
// target to 0.3 so the layout keeps adjusting; the last one to end drops
// it back to 0. [Chart.Hover] fires the "customHover" event with the
// hovered *topology.Node.
//
// # Errors
//
// Rendering never fails. Links that reference missing nodes are skipped
// and unknown node types use the default style.
//
// # Concurrency
//
// A Chart is safe for concurrent use. One mutex serializes rendering, drag
// handling and timer steps. Hover listeners run outside that lock and may
// call back into the chart.
package chart
