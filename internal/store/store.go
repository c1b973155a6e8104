package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Magicred-1/agenthub/internal/models"
)

// AgentUpdate carries the mutable agent fields for an update. Nil fields
// are left untouched.
type AgentUpdate struct {
	Name        *string
	Description *string
	Type        *string
	AvatarURL   *string
	Config      *models.AgentConfig
	IsActive    *bool
}

// DataStore defines the interface for persistent storage of profiles,
// agents and interactions. PostgresStore, SQLiteStore and MemoryStore all
// implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Profile operations
	CreateProfile(ctx context.Context, name, email, passwordHash string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)

	// Agent operations
	CreateAgent(ctx context.Context, agent *models.Agent) (*models.Agent, error)
	GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	ListAgentsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Agent, error)
	UpdateAgent(ctx context.Context, id, owner uuid.UUID, upd AgentUpdate) (*models.Agent, error)
	DeleteAgent(ctx context.Context, id, owner uuid.UUID) (bool, error)
	CountAgents(ctx context.Context) (int64, error)

	// Interaction operations
	CreateInteraction(ctx context.Context, in *models.Interaction) (*models.Interaction, error)
	ListInteractionsByUser(ctx context.Context, userID string, limit, offset int) ([]models.Interaction, int, error)
}
