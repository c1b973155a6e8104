package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Agent represents a user-owned AI agent profile. The config blob is
// validated at the creation boundary and forwarded unchanged to the
// external runtime when the agent is provisioned.
type Agent struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	Config      AgentConfig `json:"config"`
	IsActive    bool        `json:"is_active"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AgentConfig is the behavioral configuration for an agent. Only bio and
// lore are mandatory; everything else gets defaults from ApplyDefaults.
type AgentConfig struct {
	Bio             []string    `json:"bio"`
	Lore            []string    `json:"lore"`
	Style           *AgentStyle `json:"style,omitempty"`
	Topics          []string    `json:"topics"`
	Plugins         []string    `json:"plugins"`
	Adjectives      []string    `json:"adjectives"`
	PostExamples    []string    `json:"postExamples"`
	ModelProvider   string      `json:"modelProvider"`
	MessageExamples []string    `json:"messageExamples"`
}

// AgentStyle holds per-channel style directives.
type AgentStyle struct {
	All  []string `json:"all"`
	Chat []string `json:"chat"`
	Post []string `json:"post"`
}

var (
	ErrConfigNoBio  = errors.New("at least one bio entry is required")
	ErrConfigNoLore = errors.New("at least one lore entry is required")
)

// Validate checks the mandatory config fields.
func (c *AgentConfig) Validate() error {
	if len(c.Bio) == 0 {
		return ErrConfigNoBio
	}
	if len(c.Lore) == 0 {
		return ErrConfigNoLore
	}
	return nil
}

// ApplyDefaults fills in the optional config fields the runtime expects.
func (c *AgentConfig) ApplyDefaults() {
	if c.Style == nil {
		c.Style = &AgentStyle{
			All:  []string{"keep responses concise and sharp"},
			Chat: []string{"respond with quick wit"},
			Post: []string{"craft concise thought bombs"},
		}
	}
	if c.Topics == nil {
		c.Topics = []string{}
	}
	if c.Plugins == nil {
		c.Plugins = []string{}
	}
	if len(c.Adjectives) == 0 {
		c.Adjectives = []string{"brilliant", "enigmatic", "witty"}
	}
	if c.PostExamples == nil {
		c.PostExamples = []string{}
	}
	if c.ModelProvider == "" {
		c.ModelProvider = "groq"
	}
	if c.MessageExamples == nil {
		c.MessageExamples = []string{}
	}
}
