// Package event provides change notifications for clients of the service.
// Events carry just enough to tell a client what to refetch over HTTP.
package event

import (
	"sync"

	"github.com/brettbedarf/mirrorfs/internal/util"
)

// Event is the interface all event types must implement.
type Event interface {
	// EventName returns the unique name for this event type (e.g., "fs.changed")
	EventName() string
}

// Listener is a callback function for handling events.
type Listener func(Event)

type subscription struct {
	id    uint64
	name  string // empty for wildcard listeners
	apply Listener
}

// Emitter manages event subscriptions and dispatching.
type Emitter struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// On subscribes to a specific event type.
// Returns an unsubscribe function.
func (e *Emitter) On(eventName string, fn Listener) func() {
	return e.subscribe(eventName, fn)
}

// OnAny subscribes to all events.
func (e *Emitter) OnAny(fn Listener) func() {
	return e.subscribe("", fn)
}

func (e *Emitter) subscribe(name string, fn Listener) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, name: name, apply: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.subs {
				if s.id == id {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit dispatches an event to all matching listeners. Listeners run on the
// caller's goroutine and must not block. A nil emitter drops the event.
func (e *Emitter) Emit(ev Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	// Copy listeners to avoid holding lock during callbacks
	matched := make([]Listener, 0, len(e.subs))
	for _, s := range e.subs {
		if s.name == "" || s.name == ev.EventName() {
			matched = append(matched, s.apply)
		}
	}
	e.mu.RUnlock()

	logger := util.GetLogger("Event.Emit")
	logger.Trace().Str("event", ev.EventName()).Int("listeners", len(matched)).Msg("Emitting event")
	for _, fn := range matched {
		fn(ev)
	}
}

// Listeners returns the number of active subscriptions
func (e *Emitter) Listeners() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
