package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventBranch     EventType = "branch"
	EventSessionEnd EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Language  Language  `json:"language"`
}

// NodeEvent fires when a node is pushed to the transcript.
type NodeEvent struct {
	EventBase
	NodeID   int  `json:"node_id"`
	FreeText bool `json:"free_text,omitempty"`
	Terminal bool `json:"terminal,omitempty"`
}

// BranchEvent fires when a branch rule overrides a declared target.
type BranchEvent struct {
	EventBase
	RuleKind string `json:"rule_kind"`
	From     int    `json:"from"`
	Declared int    `json:"declared"`
	Resolved int    `json:"resolved"`
}

// SessionEvent fires when a session reaches the terminal sentinel.
type SessionEvent struct {
	EventBase
	FinalNodeID int `json:"final_node_id"`
	Turns       int `json:"turns"`
}

// LifecycleHooks defines callbacks for engine observability. Hooks run
// synchronously inside the turn; implementations must be fast and must not
// call back into the engine.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnBranch     func(context.Context, *BranchEvent)
	OnSessionEnd func(context.Context, *SessionEvent)
}
