package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Magicred-1/agenthub/internal/metrics"
	"github.com/Magicred-1/agenthub/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// observeLatency records one query's wall time. Deferred at the top of
// every query method.
func observeLatency(start time.Time) {
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
}

// CreateProfile creates a new profile record.
func (s *PostgresStore) CreateProfile(ctx context.Context, name, email, passwordHash string) (*models.Profile, error) {
	defer observeLatency(time.Now())

	p := &models.Profile{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, COALESCE(avatar_url, ''), password_hash, created_at, updated_at
	`, name, email, passwordHash).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.AvatarURL,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByID retrieves a profile by ID.
func (s *PostgresStore) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	defer observeLatency(time.Now())

	return s.scanProfile(s.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(avatar_url, ''), password_hash, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id))
}

// GetProfileByEmail retrieves a profile by email.
func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	defer observeLatency(time.Now())

	return s.scanProfile(s.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(avatar_url, ''), password_hash, created_at, updated_at
		FROM profiles WHERE email = $1
	`, email))
}

func (s *PostgresStore) scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.AvatarURL,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

const agentColumns = `id, name, COALESCE(description, ''), type, COALESCE(avatar_url, ''), config, is_active, created_by, created_at, updated_at`

// CreateAgent creates a new agent record.
func (s *PostgresStore) CreateAgent(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	defer observeLatency(time.Now())

	configJSON, err := json.Marshal(agent.Config)
	if err != nil {
		return nil, err
	}

	return s.scanAgent(s.pool.QueryRow(ctx, `
		INSERT INTO agents (name, description, type, avatar_url, config, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+agentColumns+`
	`, agent.Name, agent.Description, agent.Type, agent.AvatarURL, configJSON, agent.IsActive, agent.CreatedBy))
}

// GetAgentByID retrieves an agent by ID.
func (s *PostgresStore) GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	defer observeLatency(time.Now())

	return s.scanAgent(s.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM agents WHERE id = $1
	`, id))
}

// ListAgentsByOwner retrieves the agents owned by a user, newest first.
func (s *PostgresStore) ListAgentsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Agent, error) {
	defer observeLatency(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+agentColumns+`
		FROM agents
		WHERE created_by = $1
		ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		agent, err := s.scanAgentRow(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// UpdateAgent updates an agent's mutable fields, scoped to its owner.
// Returns (nil, nil) when the agent does not exist or is owned by someone
// else.
func (s *PostgresStore) UpdateAgent(ctx context.Context, id, owner uuid.UUID, upd AgentUpdate) (*models.Agent, error) {
	defer observeLatency(time.Now())

	var configJSON []byte
	if upd.Config != nil {
		var err error
		configJSON, err = json.Marshal(upd.Config)
		if err != nil {
			return nil, err
		}
	}

	return s.scanAgent(s.pool.QueryRow(ctx, `
		UPDATE agents SET
			name        = COALESCE($3, name),
			description = COALESCE($4, description),
			type        = COALESCE($5, type),
			avatar_url  = COALESCE($6, avatar_url),
			config      = COALESCE($7, config),
			is_active   = COALESCE($8, is_active),
			updated_at  = NOW()
		WHERE id = $1 AND created_by = $2
		RETURNING `+agentColumns+`
	`, id, owner, upd.Name, upd.Description, upd.Type, upd.AvatarURL, configJSON, upd.IsActive))
}

// DeleteAgent deletes an agent scoped to its owner. Returns false when no
// row matched.
func (s *PostgresStore) DeleteAgent(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	defer observeLatency(time.Now())

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM agents WHERE id = $1 AND created_by = $2
	`, id, owner)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountAgents returns the total number of agents.
func (s *PostgresStore) CountAgents(ctx context.Context) (int64, error) {
	defer observeLatency(time.Now())

	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count)
	return count, err
}

func (s *PostgresStore) scanAgent(row pgx.Row) (*models.Agent, error) {
	agent, err := scanAgentFrom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

func (s *PostgresStore) scanAgentRow(rows pgx.Rows) (*models.Agent, error) {
	return scanAgentFrom(rows)
}

func scanAgentFrom(row pgx.Row) (*models.Agent, error) {
	agent := &models.Agent{}
	var configJSON []byte
	err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Description,
		&agent.Type,
		&agent.AvatarURL,
		&configJSON,
		&agent.IsActive,
		&agent.CreatedBy,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &agent.Config); err != nil {
			return nil, err
		}
	}
	return agent, nil
}

// CreateInteraction inserts one interaction record.
func (s *PostgresStore) CreateInteraction(ctx context.Context, in *models.Interaction) (*models.Interaction, error) {
	defer observeLatency(time.Now())

	metadataJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, err
	}

	out := &models.Interaction{Metadata: in.Metadata}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO agent_interactions (agent_id, user_id, input, output, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, agent_id, user_id, input, output, created_at
	`, in.AgentID, in.UserID, in.Input, in.Output, metadataJSON).Scan(
		&out.ID,
		&out.AgentID,
		&out.UserID,
		&out.Input,
		&out.Output,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInteractionsByUser retrieves interactions for a user with pagination,
// newest first.
func (s *PostgresStore) ListInteractionsByUser(ctx context.Context, userID string, limit, offset int) ([]models.Interaction, int, error) {
	defer observeLatency(time.Now())

	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agent_interactions WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, agent_id, user_id, input, output, metadata, created_at
		FROM agent_interactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var in models.Interaction
		var metadataJSON []byte
		err := rows.Scan(
			&in.ID,
			&in.AgentID,
			&in.UserID,
			&in.Input,
			&in.Output,
			&metadataJSON,
			&in.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &in.Metadata); err != nil {
				return nil, 0, err
			}
		}
		interactions = append(interactions, in)
	}

	return interactions, total, rows.Err()
}
