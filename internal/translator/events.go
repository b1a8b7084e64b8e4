package translator

import (
	"sort"
	"sync"
)

// EventType names a translation lifecycle event.
type EventType string

const (
	// EventPreprocessed fires once the content has been prepared for
	// translation. The payload is the scene list.
	EventPreprocessed EventType = "preprocessed"
	// EventBatchTranslated fires after each batch. The payload is the batch.
	EventBatchTranslated EventType = "batch-translated"
	// EventSceneTranslated fires after each completed scene. The payload is
	// the scene.
	EventSceneTranslated EventType = "scene-translated"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

// Token identifies a subscription so it can be removed again.
type Token struct {
	event EventType
	id    uint64
}

// Events is a registry of named event channels with dynamic subscribe and
// unsubscribe. Handlers run synchronously on the publishing goroutine.
type Events struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[EventType]map[uint64]Handler
}

func NewEvents() *Events {
	return &Events{
		handlers: make(map[EventType]map[uint64]Handler),
	}
}

// Subscribe registers a handler for the event and returns a token that
// removes exactly this registration.
func (e *Events) Subscribe(event EventType, handler Handler) Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	if e.handlers[event] == nil {
		e.handlers[event] = make(map[uint64]Handler)
	}
	e.handlers[event][e.nextID] = handler
	return Token{event: event, id: e.nextID}
}

// Unsubscribe removes the registration identified by token. Unsubscribing
// twice is harmless.
func (e *Events) Unsubscribe(token Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if handlers, ok := e.handlers[token.event]; ok {
		delete(handlers, token.id)
	}
}

// Publish invokes all handlers subscribed to the event in subscription
// order. Handlers are called outside the registry lock so they may
// subscribe or unsubscribe freely.
func (e *Events) Publish(event EventType, payload any) {
	e.mu.Lock()
	ids := make([]uint64, 0, len(e.handlers[event]))
	for id := range e.handlers[event] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, e.handlers[event][id])
	}
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(payload)
	}
}

// HandlerCount reports how many handlers are attached to the event.
func (e *Events) HandlerCount(event EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[event])
}
