package scene

// Diff is the outcome of a Reconcile call.
type Diff struct {
	Entered []*Element
	Updated []*Element
	Exited  []*Element

	// Merged holds one element per key, in key order.
	Merged []*Element
}

// Reconcile makes the children of parent matching tag and class correspond
// one-to-one with keys. create is called for each new element after it is
// attached, with the index of its key; it may be nil.
func Reconcile(parent *Element, tag, class string, keys []string, create func(el *Element, i int)) Diff {
	sel := selector{tag: tag, class: class}

	pool := make(map[string][]*Element)
	for _, c := range parent.children {
		if sel.match(c) {
			pool[c.Key] = append(pool[c.Key], c)
		}
	}

	var d Diff
	d.Merged = make([]*Element, len(keys))
	for i, k := range keys {
		if q := pool[k]; len(q) > 0 {
			d.Merged[i] = q[0]
			pool[k] = q[1:]
			d.Updated = append(d.Updated, q[0])
			continue
		}
		el := New(tag)
		el.Key = k
		if class != "" {
			el.Classed(class, true)
		}
		parent.AppendChild(el)
		if create != nil {
			create(el, i)
		}
		d.Merged[i] = el
		d.Entered = append(d.Entered, el)
	}

	// Exit in document order so callers see a stable list.
	for _, c := range parent.Children() {
		if !sel.match(c) {
			continue
		}
		if q := pool[c.Key]; len(q) > 0 && q[0] == c {
			pool[c.Key] = q[1:]
			c.Remove()
			d.Exited = append(d.Exited, c)
		}
	}

	order(parent, sel, d.Merged)
	return d
}

// order rewrites the slots held by matching children so they follow merged.
func order(parent *Element, sel selector, merged []*Element) {
	next := 0
	for i, c := range parent.children {
		if sel.match(c) && next < len(merged) {
			parent.children[i] = merged[next]
			next++
		}
	}
}
