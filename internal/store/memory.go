package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Magicred-1/agenthub/internal/models"
)

// ErrDuplicateEmail is returned when a profile email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// MemoryStore is an in-memory DataStore used by tests.
type MemoryStore struct {
	mu           sync.RWMutex
	profiles     map[uuid.UUID]models.Profile
	agents       map[uuid.UUID]models.Agent
	interactions []models.Interaction

	// FailInteractions makes CreateInteraction fail, for exercising the
	// best-effort recording path.
	FailInteractions bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]models.Profile),
		agents:   make(map[uuid.UUID]models.Agent),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// CreateProfile creates a new profile record.
func (s *MemoryStore) CreateProfile(ctx context.Context, name, email, passwordHash string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	p := models.Profile{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.profiles[p.ID] = p
	return &p, nil
}

// GetProfileByID retrieves a profile by ID.
func (s *MemoryStore) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetProfileByEmail retrieves a profile by email.
func (s *MemoryStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Email == email {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// CreateAgent creates a new agent record.
func (s *MemoryStore) CreateAgent(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	out := *agent
	out.ID = uuid.New()
	out.CreatedAt = now
	out.UpdatedAt = now
	s.agents[out.ID] = out
	return &out, nil
}

// GetAgentByID retrieves an agent by ID.
func (s *MemoryStore) GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[id]
	if !ok {
		return nil, nil
	}
	return &agent, nil
}

// ListAgentsByOwner retrieves the agents owned by a user, newest first.
func (s *MemoryStore) ListAgentsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var agents []models.Agent
	for _, agent := range s.agents {
		if agent.CreatedBy == owner {
			agents = append(agents, agent)
		}
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.After(agents[j].CreatedAt)
	})
	return agents, nil
}

// UpdateAgent updates an agent's mutable fields, scoped to its owner.
func (s *MemoryStore) UpdateAgent(ctx context.Context, id, owner uuid.UUID, upd AgentUpdate) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[id]
	if !ok || agent.CreatedBy != owner {
		return nil, nil
	}

	if upd.Name != nil {
		agent.Name = *upd.Name
	}
	if upd.Description != nil {
		agent.Description = *upd.Description
	}
	if upd.Type != nil {
		agent.Type = *upd.Type
	}
	if upd.AvatarURL != nil {
		agent.AvatarURL = *upd.AvatarURL
	}
	if upd.Config != nil {
		agent.Config = *upd.Config
	}
	if upd.IsActive != nil {
		agent.IsActive = *upd.IsActive
	}
	agent.UpdatedAt = time.Now().UTC()
	s.agents[id] = agent
	return &agent, nil
}

// DeleteAgent deletes an agent scoped to its owner.
func (s *MemoryStore) DeleteAgent(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[id]
	if !ok || agent.CreatedBy != owner {
		return false, nil
	}
	delete(s.agents, id)
	return true, nil
}

// CountAgents returns the total number of agents.
func (s *MemoryStore) CountAgents(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.agents)), nil
}

// CreateInteraction inserts one interaction record.
func (s *MemoryStore) CreateInteraction(ctx context.Context, in *models.Interaction) (*models.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInteractions {
		return nil, errors.New("interaction store unavailable")
	}

	out := *in
	out.ID = uuid.New()
	out.CreatedAt = time.Now().UTC()
	s.interactions = append(s.interactions, out)
	return &out, nil
}

// ListInteractionsByUser retrieves interactions for a user, newest first.
func (s *MemoryStore) ListInteractionsByUser(ctx context.Context, userID string, limit, offset int) ([]models.Interaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Interaction
	for _, in := range s.interactions {
		if in.UserID == userID {
			matched = append(matched, in)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Interactions returns a copy of all stored interactions. Test helper.
func (s *MemoryStore) Interactions() []models.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}
