package dispatch

import (
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/topochart/pkg/errors"
)

func recorder(log *[]string, tag string) Listener {
	return func(payload any) {
		*log = append(*log, tag+":"+payload.(string))
	}
}

func TestCallOrder(t *testing.T) {
	d := New("customHover")
	var log []string
	if err := d.On("customHover.a", recorder(&log, "a")); err != nil {
		t.Fatal(err)
	}
	if err := d.On("customHover.b", recorder(&log, "b")); err != nil {
		t.Fatal(err)
	}
	if err := d.Call("customHover", "n1"); err != nil {
		t.Fatal(err)
	}
	want := []string{"a:n1", "b:n1"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestReRegisterMovesLast(t *testing.T) {
	d := New("customHover")
	var log []string
	d.On("customHover.a", recorder(&log, "a"))
	d.On("customHover.b", recorder(&log, "b"))
	d.On("customHover.a", recorder(&log, "a2"))
	d.Call("customHover", "x")

	want := []string{"b:x", "a2:x"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestUnnamedReplaces(t *testing.T) {
	d := New("customHover")
	var log []string
	d.On("customHover", recorder(&log, "first"))
	d.On("customHover", recorder(&log, "second"))
	d.Call("customHover", "x")

	if !slices.Equal(log, []string{"second:x"}) {
		t.Errorf("calls = %v", log)
	}
}

func TestRemove(t *testing.T) {
	d := New("customHover", "anyEvent")
	var log []string
	d.On("customHover.a anyEvent.a", recorder(&log, "a"))
	d.On("customHover.b", recorder(&log, "b"))

	d.On("customHover.b", nil)
	if got := d.Len("customHover"); got != 1 {
		t.Errorf("Len = %d after removing b, want 1", got)
	}

	d.On(".a", nil)
	if d.Len("customHover") != 0 || d.Len("anyEvent") != 0 {
		t.Error(".a should remove a from every type")
	}
}

func TestUnknownType(t *testing.T) {
	d := New("customHover")
	err := d.On("click", func(any) {})
	if !errors.Is(err, errors.ErrCodeUnknownEvent) {
		t.Errorf("On(click) = %v, want UNKNOWN_EVENT", err)
	}
	if err := d.Call("click", nil); !errors.Is(err, errors.ErrCodeUnknownEvent) {
		t.Errorf("Call(click) = %v, want UNKNOWN_EVENT", err)
	}
	if err := d.On("   ", nil); !errors.Is(err, errors.ErrCodeUnknownEvent) {
		t.Errorf("On(blank) = %v, want UNKNOWN_EVENT", err)
	}
}

func TestUnknownTypeLeavesStateUntouched(t *testing.T) {
	d := New("customHover")
	d.On("customHover.keep", func(any) {})
	if err := d.On("customHover.keep click", nil); err == nil {
		t.Fatal("expected error")
	}
	if d.Len("customHover") != 1 {
		t.Error("failed On must not remove listeners")
	}
}

func TestListener(t *testing.T) {
	d := New("customHover")
	if fn, err := d.Listener("customHover.x"); err != nil || fn != nil {
		t.Errorf("Listener before On = %v, %v", fn, err)
	}
	called := false
	d.On("customHover.x", func(any) { called = true })
	fn, err := d.Listener("customHover.x")
	if err != nil || fn == nil {
		t.Fatalf("Listener = %v, %v", fn, err)
	}
	fn(nil)
	if !called {
		t.Error("returned listener is not the registered one")
	}
}

func TestCopyIsIndependent(t *testing.T) {
	d := New("customHover")
	d.On("customHover.a", func(any) {})
	c := d.Copy()
	c.On("customHover.b", func(any) {})

	if d.Len("customHover") != 1 {
		t.Errorf("original Len = %d, want 1", d.Len("customHover"))
	}
	if c.Len("customHover") != 2 {
		t.Errorf("copy Len = %d, want 2", c.Len("customHover"))
	}
	if !slices.Equal(c.Types(), []string{"customHover"}) {
		t.Errorf("copy Types = %v", c.Types())
	}
}

func TestNewIgnoresInvalidTypes(t *testing.T) {
	d := New("a", "", "a", "b.c", "d")
	if got := d.Types(); !slices.Equal(got, []string{"a", "d"}) {
		t.Errorf("Types() = %v, want [a d]", got)
	}
}

func TestListenerMayRegister(t *testing.T) {
	d := New("customHover")
	d.On("customHover.once", func(any) {
		d.On("customHover.once", nil)
	})
	if err := d.Call("customHover", nil); err != nil {
		t.Fatal(err)
	}
	if d.Len("customHover") != 0 {
		t.Error("listener should have removed itself")
	}
}

func TestConcurrentUse(t *testing.T) {
	d := New("customHover")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.On("customHover.x", func(any) {})
				d.Call("customHover", j)
			}
		}()
	}
	wg.Wait()
	if d.Len("customHover") != 1 {
		t.Errorf("Len = %d, want 1", d.Len("customHover"))
	}
}
