package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventOpen  EventType = "session_open"
	EventStep  EventType = "step"
	EventHalt  EventType = "halt"
	EventRun   EventType = "run"
	EventReset EventType = "reset"
	EventClose EventType = "session_close"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	InstanceID   string    `json:"instance_id"`
	DefinitionID string    `json:"definition_id"`
}

// NewEventBase stamps an event for the given instance.
func NewEventBase(t EventType, inst *Instance) EventBase {
	return EventBase{
		Timestamp:    time.Now(),
		Type:         t,
		InstanceID:   inst.ID,
		DefinitionID: inst.DefinitionID,
	}
}

// SessionEvent represents open, reset and close of an instance.
type SessionEvent struct {
	EventBase
	Snapshot Snapshot `json:"snapshot"`
}

// StepEvent represents one applied transition.
type StepEvent struct {
	EventBase
	Record StepRecord `json:"record"`
}

// HaltEvent represents the Ready -> Halted transition.
type HaltEvent struct {
	EventBase
	State string `json:"state"`
	Steps int    `json:"steps"`
	Final bool   `json:"final"`
}

// RunEvent summarizes a bounded run.
type RunEvent struct {
	EventBase
	Applied int  `json:"applied"`
	Halted  bool `json:"halted"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnOpen  func(context.Context, *SessionEvent)
	OnStep  func(context.Context, *StepEvent)
	OnHalt  func(context.Context, *HaltEvent)
	OnRun   func(context.Context, *RunEvent)
	OnReset func(context.Context, *SessionEvent)
	OnClose func(context.Context, *SessionEvent)
}

// MergeHooks chains several hook sets; each callback runs in argument order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range all {
		merged.OnOpen = chain(merged.OnOpen, h.OnOpen)
		merged.OnStep = chain(merged.OnStep, h.OnStep)
		merged.OnHalt = chain(merged.OnHalt, h.OnHalt)
		merged.OnRun = chain(merged.OnRun, h.OnRun)
		merged.OnReset = chain(merged.OnReset, h.OnReset)
		merged.OnClose = chain(merged.OnClose, h.OnClose)
	}
	return merged
}

func chain[E any](first, second func(context.Context, *E)) func(context.Context, *E) {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ctx context.Context, e *E) {
		first(ctx, e)
		second(ctx, e)
	}
}
