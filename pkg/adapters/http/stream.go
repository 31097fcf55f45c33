package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager fans session events out to SSE subscribers. Its Hooks are
// registered on the engine so every turn that changes state is broadcast.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions for sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

func (sm *StreamManager) broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			// Slow client.
			sm.logger.Warn("sse buffer full, dropping event", "session_id", sessionID, "event", ev.Name)
		}
	}
}

// Hooks returns lifecycle hooks that publish state diffs and resets.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			if e.Diff == nil {
				return
			}
			data, err := json.Marshal(e.Diff)
			if err != nil {
				sm.logger.Error("encode diff", "session_id", e.SessionID, "err", err)
				return
			}
			sm.broadcast(e.SessionID, Event{Name: "diff", Data: string(data)})
		},
		OnReset: func(_ context.Context, e *domain.EventBase) {
			data, _ := json.Marshal(map[string]string{"session_id": e.SessionID})
			sm.broadcast(e.SessionID, Event{Name: "reset", Data: string(data)})
		},
	}
}
