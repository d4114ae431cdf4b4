// Package hello is the smallest chart component: it renders the data it is
// given as a styled text block and reports hovers through an event.
//
// It shows the component shape the topology chart follows: configuration
// through chainable setters, an explicit Render into a container, and
// named events for callers to observe.
//
//	h := hello.New().SetFontSize(20).SetFontColor("green")
//	h.On("customHover", func(d any) { fmt.Println("hovered:", d) })
//	div := h.Render(root, []int{10, 20, 30})
//	h.Hover(div)
package hello

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/matzehuels/topochart/pkg/dispatch"
	"github.com/matzehuels/topochart/pkg/scene"
)

// Event names.
const (
	EventHover = "customHover"
	EventAny   = "anyEvent"
)

// Defaults.
const (
	DefaultFontSize  = 10
	DefaultFontColor = "red"
)

// Hello renders data as text.
type Hello struct {
	mu        sync.Mutex
	fontSize  float64
	fontColor string
	events    *dispatch.Dispatcher
}

// New creates a component with the default font.
func New() *Hello {
	return &Hello{
		fontSize:  DefaultFontSize,
		fontColor: DefaultFontColor,
		events:    dispatch.New(EventHover, EventAny),
	}
}

func (h *Hello) FontSize() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fontSize
}

func (h *Hello) SetFontSize(v float64) *Hello {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fontSize = v
	return h
}

func (h *Hello) FontColor() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fontColor
}

func (h *Hello) SetFontColor(c string) *Hello {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fontColor = c
	return h
}

// On registers or removes a listener for "customHover" or "anyEvent".
func (h *Hello) On(typename string, fn dispatch.Listener) error {
	return h.events.On(typename, fn)
}

// Emit fires an event with an arbitrary payload.
func (h *Hello) Emit(event string, payload any) error {
	return h.events.Call(event, payload)
}

// Render appends a div showing data to container and returns it. Each
// call appends a new div.
func (h *Hello) Render(container *scene.Element, data any) *scene.Element {
	h.mu.Lock()
	size, color := h.fontSize, h.fontColor
	h.mu.Unlock()

	div := container.Append("div")
	div.SetStyle("font-size", scene.FormatNum(size)+"px")
	div.SetStyle("color", color)
	div.SetText("data passed to hello module = " + Format(data))
	div.Datum = data
	return div
}

// Hover fires "customHover" with the data bound to div.
func (h *Hello) Hover(div *scene.Element) error {
	return h.events.Call(EventHover, div.Datum)
}

// Format renders slices and arrays as comma separated values and anything
// else with fmt.
func Format(data any) string {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Sprint(data)
	}
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(v.Index(i).Interface())
	}
	return strings.Join(parts, ",")
}
