// Package realtime provides a lightweight in-process publish/subscribe hub
// used to fan out dataset lifecycle events (reloads, snapshot generation) to
// multiple listeners such as WebSocket sessions.
//
// Delivery is best effort: every listener has its own buffered channel and a
// listener whose buffer is full misses the event. Nothing is persisted or
// replayed; a client that connects late asks the API for the current state.
package realtime

import (
	"sync"
	"time"
)

// Event types. The hub produces reload and generate events; init and
// heartbeat are written by stream transports.
const (
	TypeInit      = "init"
	TypeReload    = "reload"
	TypeGenerate  = "generate"
	TypeHeartbeat = "heartbeat"
)

// DatasetEvent describes a dataset generation that was just swapped in.
type DatasetEvent struct {
	Generation   string    `json:"generation"`
	TotalEntries int       `json:"total_entries"`
	Skipped      int       `json:"skipped"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// GenerateEvent describes a finished snapshot generation run.
type GenerateEvent struct {
	Output   string    `json:"output"`
	Total    int       `json:"total_records"`
	Counties int       `json:"counties"`
	Finished time.Time `json:"finished"`
}

// Event is the envelope delivered to listeners. Exactly one payload is set,
// matching Type.
type Event struct {
	Type     string         `json:"type"`
	Dataset  *DatasetEvent  `json:"dataset,omitempty"`
	Generate *GenerateEvent `json:"generate,omitempty"`
}

// Hub is an in-memory fan-out dispatcher. It is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a new listener and returns (listenerID, receiveOnlyChannel).
// Callers must later Unregister(id) to release resources.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener with the given id and closes its channel.
// It is safe to call multiple times; unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers an event to all registered listeners (best effort).
// Accepted input types:
//   - Event
//   - DatasetEvent (wrapped as Type "reload")
//   - GenerateEvent (wrapped as Type "generate")
//
// Any other type is ignored silently.
func (h *Hub) Broadcast(event interface{}) {
	var ev Event
	switch v := event.(type) {
	case Event:
		ev = v
	case DatasetEvent:
		ev = Event{Type: TypeReload, Dataset: &v}
	case GenerateEvent:
		ev = Event{Type: TypeGenerate, Generate: &v}
	default:
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the current number of active listeners (approximate).
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
