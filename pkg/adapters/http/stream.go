package http

import (
	"log/slog"
	"sync"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // InstanceID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for an instance. The returned
// function unregisters and closes it.
func (sm *StreamManager) Subscribe(instanceID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 16)
	if _, ok := sm.subscribers[instanceID]; !ok {
		sm.subscribers[instanceID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[instanceID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[instanceID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, instanceID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers counts the listeners of an instance.
func (sm *StreamManager) Subscribers(instanceID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[instanceID])
}

// Broadcast delivers an event to every subscriber of the instance.
// Slow subscribers lose the event rather than block the caller.
func (sm *StreamManager) Broadcast(instanceID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[instanceID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping event", "instance_id", instanceID, "event", ev.Name)
		}
	}
}
