// Package dispatch is a named-event observer registry.
//
// A [Dispatcher] is created with a fixed set of event types. Listeners are
// registered per type under an optional name using "type.name" typenames:
//
//	d := dispatch.New("customHover")
//	d.On("customHover.tooltip", showTooltip)
//	d.On("customHover.log", logHover)
//	d.Call("customHover", node) // showTooltip, then logHover
//
// Each (type, name) pair holds at most one listener. Registering under a
// name that is already taken replaces the old listener and moves it to the
// end of the call order; passing a nil listener removes it. A typename with
// no type (".log") addresses that name across every type, which is only
// meaningful for removal.
//
// Several typenames may be given at once, separated by spaces.
//
// Listeners run synchronously on the calling goroutine, in registration
// order. The registry itself is safe for concurrent use; Call snapshots the
// listener list so a listener may register or remove others.
package dispatch
