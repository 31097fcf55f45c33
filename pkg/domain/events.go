package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn      EventType = "turn"
	EventEstimate  EventType = "estimate"
	EventReset     EventType = "reset"
	EventSensitive EventType = "sensitive_input"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TurnEvent describes one handled turn. Raw user text is deliberately absent.
type TurnEvent struct {
	EventBase
	Intent   string     `json:"intent"`
	From     Flow       `json:"from"`
	To       Flow       `json:"to"`
	Diff     *StateDiff `json:"diff,omitempty"`
	Duration time.Duration
}

// EstimateEvent is emitted whenever the estimator produced a range for a session.
type EstimateEvent struct {
	EventBase
	AwardYear  string     `json:"award_year"`
	Enrollment Enrollment `json:"enrollment"`
	SAIBand    string     `json:"sai_band"`
	Likelihood string     `json:"likelihood"`
	Min        int        `json:"min"`
	Max        int        `json:"max"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTurn      func(context.Context, *TurnEvent)
	OnEstimate  func(context.Context, *EstimateEvent)
	OnSensitive func(context.Context, *EventBase)
	OnReset     func(context.Context, *EventBase)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:      chain(h.OnTurn, other.OnTurn),
		OnEstimate:  chain(h.OnEstimate, other.OnEstimate),
		OnSensitive: chain(h.OnSensitive, other.OnSensitive),
		OnReset:     chain(h.OnReset, other.OnReset),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e T) {
		a(ctx, e)
		b(ctx, e)
	}
}
