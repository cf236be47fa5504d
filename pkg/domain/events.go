package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGenerateStart   EventType = "generate_start"
	EventGenerateEnd     EventType = "generate_end"
	EventResultDiscarded EventType = "result_discarded"
	EventRender          EventType = "render"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// GenerateEvent describes one compilation request.
type GenerateEvent struct {
	EventBase
	Token    uint64        `json:"token"`
	Name     string        `json:"name,omitempty"`
	Outcome  string        `json:"outcome,omitempty"` // "succeeded", "failed" or "discarded"
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration,omitempty"`
}

// RenderEvent describes one pass through the render sandbox.
type RenderEvent struct {
	EventBase
	RealmID  string `json:"realm_id"`
	Status   string `json:"status"`
	Warnings int    `json:"warnings,omitempty"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnGenerateStart   func(context.Context, *GenerateEvent)
	OnGenerateEnd     func(context.Context, *GenerateEvent)
	OnResultDiscarded func(context.Context, *GenerateEvent)
	OnRender          func(context.Context, *RenderEvent)
}
