package scene

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Attr is one element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the tree.
type Element struct {
	Tag string

	// Text is escaped on output; Raw is written verbatim after it and is
	// meant for style and script bodies.
	Text string
	Raw  string

	// Key is the identity used by Reconcile.
	Key string

	// Datum is the value bound to the element by its owner.
	Datum any

	attrs    []Attr
	classes  []string
	styles   []Attr
	parent   *Element
	children []*Element
}

// New creates a detached element.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// =============================================================================
// Attributes
// =============================================================================

// Attr returns the attribute value and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute. New attributes keep insertion order.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
	return e
}

// SetAttrf sets an attribute from a format string.
func (e *Element) SetAttrf(name, format string, args ...any) *Element {
	return e.SetAttr(name, fmt.Sprintf(format, args...))
}

// SetNum sets a numeric attribute using the shortest representation.
func (e *Element) SetNum(name string, v float64) *Element {
	return e.SetAttr(name, FormatNum(v))
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) *Element {
	e.attrs = slices.DeleteFunc(e.attrs, func(a Attr) bool { return a.Name == name })
	return e
}

// Attrs returns a copy of the attributes in output order.
func (e *Element) Attrs() []Attr { return slices.Clone(e.attrs) }

// FormatNum formats v the way attribute numbers are written: integers
// without a fraction, everything else with at most three decimals.
func FormatNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// =============================================================================
// Classes and styles
// =============================================================================

// Classed adds or removes a class.
func (e *Element) Classed(class string, on bool) *Element {
	has := slices.Contains(e.classes, class)
	switch {
	case on && !has:
		e.classes = append(e.classes, class)
	case !on && has:
		e.classes = slices.DeleteFunc(e.classes, func(c string) bool { return c == class })
	}
	return e
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

// Classes returns the classes in insertion order.
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

// Style returns an inline style property.
func (e *Element) Style(name string) string {
	for _, s := range e.styles {
		if s.Name == name {
			return s.Value
		}
	}
	return ""
}

// SetStyle sets an inline style property; an empty value removes it.
func (e *Element) SetStyle(name, value string) *Element {
	if value == "" {
		e.styles = slices.DeleteFunc(e.styles, func(s Attr) bool { return s.Name == name })
		return e
	}
	for i := range e.styles {
		if e.styles[i].Name == name {
			e.styles[i].Value = value
			return e
		}
	}
	e.styles = append(e.styles, Attr{Name: name, Value: value})
	return e
}

// SetText replaces the text content.
func (e *Element) SetText(s string) *Element {
	e.Text = s
	return e
}

// =============================================================================
// Tree
// =============================================================================

// Parent returns the parent, or nil for a detached element.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

// Append creates a child element at the end and returns it.
func (e *Element) Append(tag string) *Element {
	return e.AppendChild(New(tag))
}

// AppendChild attaches c as the last child, detaching it first if needed.
func (e *Element) AppendChild(c *Element) *Element {
	c.Remove()
	c.parent = e
	e.children = append(e.children, c)
	return c
}

// Remove detaches the element from its parent. Removing a detached element
// is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
}

// Select returns the first descendant matching selector, or nil.
func (e *Element) Select(selector string) *Element {
	m := parseSelector(selector)
	var found *Element
	e.walk(func(el *Element) bool {
		if m.match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// SelectClass is Select(".class").
func (e *Element) SelectClass(class string) *Element {
	return e.Select("." + class)
}

// SelectAll returns every descendant matching selector in document order.
func (e *Element) SelectAll(selector string) []*Element {
	m := parseSelector(selector)
	var out []*Element
	e.walk(func(el *Element) bool {
		if m.match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ChildrenMatching returns the direct children matching selector.
func (e *Element) ChildrenMatching(selector string) []*Element {
	m := parseSelector(selector)
	var out []*Element
	for _, c := range e.children {
		if m.match(c) {
			out = append(out, c)
		}
	}
	return out
}

// walk visits descendants depth-first until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	for _, c := range e.children {
		if !fn(c) || !c.walk(fn) {
			return false
		}
	}
	return true
}

type selector struct {
	tag, class string
}

func parseSelector(s string) selector {
	tag, class, _ := strings.Cut(strings.TrimSpace(s), ".")
	return selector{tag: tag, class: class}
}

func (s selector) match(e *Element) bool {
	if s.tag != "" && s.tag != "*" && e.Tag != s.tag {
		return false
	}
	return s.class == "" || e.HasClass(s.class)
}
