// Package scene is a small retained element tree for SVG and HTML output.
//
// Components draw into an [Element] tree instead of writing markup
// directly, so repeated renders can find and update what they drew last
// time. The tree is serialized with [Element.WriteXML].
//
// # Selectors
//
// [Element.Select] and [Element.SelectAll] search descendants in document
// order. Selectors are a single simple term: "tag", ".class" or
// "tag.class".
//
// # Reconciliation
//
// [Reconcile] joins a list of identity keys onto the children of a parent
// that match a tag and class:
//
//	diff := scene.Reconcile(layer, "g", "node", ids, func(el *scene.Element, i int) {
//	    el.Append("circle")
//	})
//
// Children whose key is still wanted are kept (Updated), missing keys get a
// new child built by the create callback (Entered), and children whose key
// is gone are detached (Exited). Merged lists the surviving and new
// elements in key order, and the matching children are reordered to follow
// it. Repeated keys pair up with existing children in order, so a list with
// duplicates reconciles stably.
//
// Elements are not safe for concurrent use.
package scene
