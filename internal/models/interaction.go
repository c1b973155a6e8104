package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction is one recorded input/output exchange between a user and an
// agent. Rows are append-only: they are never mutated or deleted.
type Interaction struct {
	ID        uuid.UUID           `json:"id"`
	AgentID   uuid.UUID           `json:"agent_id"`
	UserID    string              `json:"user_id"`
	Input     string              `json:"input"`
	Output    string              `json:"output"`
	Metadata  InteractionMetadata `json:"metadata"`
	CreatedAt time.Time           `json:"created_at"`
}

// InteractionMetadata is the blob stored alongside each exchange.
type InteractionMetadata struct {
	UserName  string `json:"userName"`
	Timestamp string `json:"timestamp"` // ISO-8601
	Action    string `json:"action"`
}
