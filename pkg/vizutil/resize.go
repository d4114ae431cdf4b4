package vizutil

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// ResizeHandler receives the new viewport size.
type ResizeHandler func(width, height float64)

// Resizer fans viewport size changes out to registered handlers.
type Resizer struct {
	mu       sync.Mutex
	logger   *log.Logger
	next     int
	handlers []resizeEntry
}

type resizeEntry struct {
	id int
	fn ResizeHandler
}

// NewResizer creates a resize bus. A nil logger discards warnings.
func NewResizer(logger *log.Logger) *Resizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resizer{logger: logger}
}

// OnResize registers handler and returns a function that removes it.
// A nil handler cannot be bound: a warning is logged and the returned
// function does nothing.
func (r *Resizer) OnResize(handler ResizeHandler) (clear func()) {
	if handler == nil {
		r.logger.Warn("failed to bind resize handler", "handler", "nil")
		return func() {}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.handlers = append(r.handlers, resizeEntry{id: id, fn: handler})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.handlers = slices.DeleteFunc(r.handlers, func(e resizeEntry) bool { return e.id == id })
		})
	}
}

// Notify calls every handler with the new size, in registration order.
// Handlers run without the bus lock held.
func (r *Resizer) Notify(width, height float64) {
	r.mu.Lock()
	handlers := slices.Clone(r.handlers)
	r.mu.Unlock()

	for _, e := range handlers {
		e.fn(width, height)
	}
}

// Len returns the number of registered handlers.
func (r *Resizer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
