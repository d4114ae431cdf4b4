package dispatch

import (
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/topochart/pkg/errors"
)

// Listener receives the payload passed to Call.
type Listener func(payload any)

type entry struct {
	name string
	fn   Listener
}

// Dispatcher holds the listeners of a fixed set of event types.
type Dispatcher struct {
	mu    sync.RWMutex
	order []string
	types map[string][]entry
}

// New creates a dispatcher for the given event types. Duplicate or empty
// type names are ignored.
func New(types ...string) *Dispatcher {
	d := &Dispatcher{types: make(map[string][]entry, len(types))}
	for _, t := range types {
		if t == "" || strings.ContainsAny(t, ". ") {
			continue
		}
		if _, ok := d.types[t]; ok {
			continue
		}
		d.order = append(d.order, t)
		d.types[t] = nil
	}
	return d
}

// Types returns the declared event types in declaration order.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

type typename struct {
	typ, name string
}

func (d *Dispatcher) parse(s string) ([]typename, error) {
	var out []typename
	for _, field := range strings.Fields(s) {
		typ, name, _ := strings.Cut(field, ".")
		if typ != "" {
			if _, ok := d.types[typ]; !ok {
				return nil, errors.New(errors.ErrCodeUnknownEvent, "unknown event type %q", typ)
			}
		}
		out = append(out, typename{typ: typ, name: name})
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeUnknownEvent, "empty event typename")
	}
	return out, nil
}

// On registers fn for each typename in s, or removes the listeners when fn
// is nil. It fails without changes if any type was not declared.
func (d *Dispatcher) On(s string, fn Listener) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tns, err := d.parse(s)
	if err != nil {
		return err
	}
	for _, tn := range tns {
		if tn.typ != "" {
			d.types[tn.typ] = set(d.types[tn.typ], tn.name, fn)
			continue
		}
		if fn == nil {
			for t, list := range d.types {
				d.types[t] = set(list, tn.name, nil)
			}
		}
	}
	return nil
}

// set removes any listener named name and appends fn when non-nil.
func set(list []entry, name string, fn Listener) []entry {
	list = slices.DeleteFunc(list, func(e entry) bool { return e.name == name })
	if fn != nil {
		list = append(list, entry{name: name, fn: fn})
	}
	return list
}

// Listener returns the listener registered for the first typename in s, or
// nil when none is registered.
func (d *Dispatcher) Listener(s string) (Listener, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tns, err := d.parse(s)
	if err != nil {
		return nil, err
	}
	tn := tns[0]
	for _, e := range d.types[tn.typ] {
		if e.name == tn.name {
			return e.fn, nil
		}
	}
	return nil, nil
}

// Len returns the number of listeners registered for typ.
func (d *Dispatcher) Len(typ string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.types[typ])
}

// Call invokes every listener of typ with payload, in registration order.
func (d *Dispatcher) Call(typ string, payload any) error {
	d.mu.RLock()
	list, ok := d.types[typ]
	list = slices.Clone(list)
	d.mu.RUnlock()

	if !ok {
		return errors.New(errors.ErrCodeUnknownEvent, "unknown event type %q", typ)
	}
	for _, e := range list {
		e.fn(payload)
	}
	return nil
}

// Copy returns an independent dispatcher with the same types and listeners.
func (d *Dispatcher) Copy() *Dispatcher {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := &Dispatcher{
		order: slices.Clone(d.order),
		types: make(map[string][]entry, len(d.types)),
	}
	for t, list := range d.types {
		c.types[t] = slices.Clone(list)
	}
	return c
}
