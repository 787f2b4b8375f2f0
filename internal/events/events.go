// Package events provides the typed publish/subscribe surface the
// coordinators use to talk to presentation layers.  Handlers are
// registered per event kind at wiring time; the coordinators never
// reach into ambient global state.
package events

import "sync"

// Kind identifies a domain event emitted by a coordinator.  The set
// is closed: presentation layers subscribe by constant, never by
// arbitrary string.
type Kind string

const (
	KindActivate           Kind = "activate"            // move mode switched on
	KindDeactivate         Kind = "deactivate"          // move mode switched off
	KindPoolUpdate         Kind = "pool_update"         // pool membership or counts changed
	KindSelectionChange    Kind = "selection_change"    // selected reservation changed
	KindFurnitureHighlight Kind = "furniture_highlight" // preference highlight tiers recomputed
	KindUndo               Kind = "undo"                // an operation was undone
	KindConflictUpdate     Kind = "conflict_update"     // conflict-resolution progress changed
	KindError              Kind = "error"               // an operation failed
)

// Handler receives the payload attached to an emitted event.  The
// payload type depends on the kind; handlers are expected to type
// assert.
type Handler func(payload any)

// Emitter dispatches events to subscribed handlers.  Subscription
// order is preserved per kind.  Safe for concurrent use.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers a handler for the given kind.  Nil handlers are
// ignored.
func (e *Emitter) Subscribe(kind Kind, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	e.handlers[kind] = append(e.handlers[kind], h)
	e.mu.Unlock()
}

// Emit invokes every handler registered for the kind, in order, on
// the calling goroutine.  Handlers registered during dispatch are not
// invoked for the current event.
func (e *Emitter) Emit(kind Kind, payload any) {
	e.mu.RLock()
	hs := make([]Handler, len(e.handlers[kind]))
	copy(hs, e.handlers[kind])
	e.mu.RUnlock()
	for _, h := range hs {
		h(payload)
	}
}
