package models

import "github.com/google/uuid"

// InteractionEvent is published after an interaction row is inserted and
// consumed by the notification bridge. Delivery is best-effort: there is no
// ordering guarantee between the insert and the event, and a dropped event
// is never redelivered.
type InteractionEvent struct {
	InteractionID uuid.UUID `json:"interaction_id"`
	AgentID       uuid.UUID `json:"agent_id"`
	UserID        string    `json:"user_id"`
	Output        string    `json:"output"`
	Timestamp     int64     `json:"ts"` // Unix ms
}
