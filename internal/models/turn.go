package models

import "time"

// Utterance is the immutable per-message input to the engine.
type Utterance struct {
	ConversationID string    `json:"conversationId"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// TurnState is the decision state a turn terminated in before responding.
type TurnState string

const (
	StateReadyToAct   TurnState = "READY_TO_ACT"
	StateAwaitingSlot TurnState = "AWAITING_SLOT"
	StateFailed       TurnState = "FAILED"
)

// TurnResult is the immutable outcome of one engine call: the resolved
// intent, the slot frame after merging, the composed response text, and the
// updated context the caller should persist.
type TurnResult struct {
	TurnID          string               `json:"turnId"`
	Intent          Intent               `json:"intent"`
	Confidence      float64              `json:"confidence"`
	State           TurnState            `json:"state"`
	Entities        []Entity             `json:"entities,omitempty"`
	Slots           map[string]Slot      `json:"slots,omitempty"`
	Response        string               `json:"response"`
	DataUnavailable bool                 `json:"dataUnavailable,omitempty"`
	Context         *ConversationContext `json:"context"`
}
