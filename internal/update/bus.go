package update

import "sync"

// EventType identifies the kind of event fired on the bus.
type EventType int

const (
	EventUpdateAvailable EventType = iota
	EventDownloadProgress
	EventDownloadComplete
	EventDownloadReset
)

// Event carries data from the updater engine to the controller.
//
// Payloads:
//   - EventUpdateAvailable: UpdateInfo
//   - EventDownloadProgress: DownloadProgress
//   - EventDownloadComplete: nil
//   - EventDownloadReset: State (StateIdle or StateDismissed)
type Event struct {
	Type    EventType
	Payload any
}

// Handler is a callback for bus subscribers.
type Handler func(Event)

// EventBus delivers engine events to subscribers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewEventBus creates a ready-to-use event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a given event type.
func (eb *EventBus) Subscribe(t EventType, h Handler) {
	eb.mu.Lock()
	eb.handlers[t] = append(eb.handlers[t], h)
	eb.mu.Unlock()
}

// Publish runs every handler for e synchronously, in subscription order, so
// events from one publisher arrive in the order they were sent.
func (eb *EventBus) Publish(e Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	handlers := eb.handlers[e.Type]
	eb.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
