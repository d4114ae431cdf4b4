package scene

import (
	"slices"
	"testing"
)

func keysOf(els []*Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Key
	}
	return out
}

func TestReconcile(t *testing.T) {
	layer := New("g")
	layer.Append("title")

	created := 0
	create := func(el *Element, i int) {
		created++
		el.Append("circle")
	}

	d := Reconcile(layer, "g", "node", []string{"a", "b", "c"}, create)
	if len(d.Entered) != 3 || len(d.Updated) != 0 || len(d.Exited) != 0 {
		t.Fatalf("first diff = %d/%d/%d", len(d.Entered), len(d.Updated), len(d.Exited))
	}
	first := d.Merged

	d = Reconcile(layer, "g", "node", []string{"c", "a", "d"}, create)
	if got := keysOf(d.Entered); !slices.Equal(got, []string{"d"}) {
		t.Errorf("Entered = %v, want [d]", got)
	}
	if got := keysOf(d.Updated); !slices.Equal(got, []string{"c", "a"}) {
		t.Errorf("Updated = %v, want [c a]", got)
	}
	if got := keysOf(d.Exited); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Exited = %v, want [b]", got)
	}
	if d.Merged[0] != first[2] || d.Merged[1] != first[0] {
		t.Error("survivors should keep their element identity")
	}
	if created != 4 {
		t.Errorf("create called %d times, want 4", created)
	}

	children := layer.Children()
	if children[0].Tag != "title" {
		t.Error("non-matching children must stay in place")
	}
	if got := keysOf(children[1:]); !slices.Equal(got, []string{"c", "a", "d"}) {
		t.Errorf("child order = %v, want [c a d]", got)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	layer := New("g")
	keys := []string{"a", "b"}
	Reconcile(layer, "line", "link", keys, nil)
	d := Reconcile(layer, "line", "link", keys, nil)
	if len(d.Entered) != 0 || len(d.Exited) != 0 || len(d.Updated) != 2 {
		t.Errorf("second diff = %d/%d/%d", len(d.Entered), len(d.Updated), len(d.Exited))
	}
	if got := len(layer.Children()); got != 2 {
		t.Errorf("children = %d, want 2", got)
	}
}

func TestReconcileDuplicateKeys(t *testing.T) {
	layer := New("g")
	Reconcile(layer, "g", "node", []string{"a", "a"}, nil)
	d := Reconcile(layer, "g", "node", []string{"a"}, nil)
	if len(d.Updated) != 1 || len(d.Exited) != 1 {
		t.Errorf("diff = %d updated, %d exited", len(d.Updated), len(d.Exited))
	}
	if got := len(layer.Children()); got != 1 {
		t.Errorf("children = %d, want 1", got)
	}
}

func TestReconcileEmpty(t *testing.T) {
	layer := New("g")
	Reconcile(layer, "g", "node", []string{"a", "b"}, nil)
	d := Reconcile(layer, "g", "node", nil, nil)
	if len(d.Exited) != 2 || len(layer.Children()) != 0 {
		t.Errorf("exited %d, %d children left", len(d.Exited), len(layer.Children()))
	}
}
