package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Magicred-1/agenthub/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the fallback
// backend for local development and tests when no DATABASE_URL is set.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/agenthub.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/agenthub.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT UNIQUE NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT '',
		config TEXT NOT NULL DEFAULT '{}',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_by TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agents_created_by ON agents (created_by, created_at DESC);

	CREATE TABLE IF NOT EXISTS agent_interactions (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_user ON agent_interactions (user_id, created_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateProfile creates a new profile record.
func (s *SQLiteStore) CreateProfile(ctx context.Context, name, email, passwordHash string) (*models.Profile, error) {
	now := time.Now().UTC()
	p := &models.Profile{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, avatar_url, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?, ?)
	`, p.ID.String(), p.Name, p.Email, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByID retrieves a profile by ID.
func (s *SQLiteStore) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, avatar_url, password_hash, created_at, updated_at
		FROM profiles WHERE id = ?
	`, id.String()))
}

// GetProfileByEmail retrieves a profile by email.
func (s *SQLiteStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, avatar_url, password_hash, created_at, updated_at
		FROM profiles WHERE email = ?
	`, email))
}

func (s *SQLiteStore) scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var id string
	err := row.Scan(&id, &p.Name, &p.Email, &p.AvatarURL, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateAgent creates a new agent record.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *models.Agent) (*models.Agent, error) {
	configJSON, err := json.Marshal(agent.Config)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := *agent
	out.ID = uuid.New()
	out.CreatedAt = now
	out.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, name, description, type, avatar_url, config, is_active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, out.ID.String(), out.Name, out.Description, out.Type, out.AvatarURL, string(configJSON), out.IsActive, out.CreatedBy.String(), out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAgentByID retrieves an agent by ID.
func (s *SQLiteStore) GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, avatar_url, config, is_active, created_by, created_at, updated_at
		FROM agents WHERE id = ?
	`, id.String())

	agent, err := scanSQLiteAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

// ListAgentsByOwner retrieves the agents owned by a user, newest first.
func (s *SQLiteStore) ListAgentsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, avatar_url, config, is_active, created_by, created_at, updated_at
		FROM agents
		WHERE created_by = ?
		ORDER BY created_at DESC, id DESC
	`, owner.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		agent, err := scanSQLiteAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// UpdateAgent updates an agent's mutable fields, scoped to its owner.
func (s *SQLiteStore) UpdateAgent(ctx context.Context, id, owner uuid.UUID, upd AgentUpdate) (*models.Agent, error) {
	current, err := s.getOwnedAgent(ctx, id, owner)
	if err != nil || current == nil {
		return nil, err
	}

	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Type != nil {
		current.Type = *upd.Type
	}
	if upd.AvatarURL != nil {
		current.AvatarURL = *upd.AvatarURL
	}
	if upd.Config != nil {
		current.Config = *upd.Config
	}
	if upd.IsActive != nil {
		current.IsActive = *upd.IsActive
	}
	current.UpdatedAt = time.Now().UTC()

	configJSON, err := json.Marshal(current.Config)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE agents
		SET name = ?, description = ?, type = ?, avatar_url = ?, config = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND created_by = ?
	`, current.Name, current.Description, current.Type, current.AvatarURL, string(configJSON), current.IsActive, current.UpdatedAt, id.String(), owner.String())
	if err != nil {
		return nil, err
	}
	return current, nil
}

func (s *SQLiteStore) getOwnedAgent(ctx context.Context, id, owner uuid.UUID) (*models.Agent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, avatar_url, config, is_active, created_by, created_at, updated_at
		FROM agents WHERE id = ? AND created_by = ?
	`, id.String(), owner.String())

	agent, err := scanSQLiteAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

// DeleteAgent deletes an agent scoped to its owner.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM agents WHERE id = ? AND created_by = ?
	`, id.String(), owner.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountAgents returns the total number of agents.
func (s *SQLiteStore) CountAgents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAgent(row rowScanner) (*models.Agent, error) {
	agent := &models.Agent{}
	var id, createdBy, configJSON string
	err := row.Scan(
		&id,
		&agent.Name,
		&agent.Description,
		&agent.Type,
		&agent.AvatarURL,
		&configJSON,
		&agent.IsActive,
		&createdBy,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if agent.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if agent.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(configJSON), &agent.Config); err != nil {
		return nil, err
	}
	return agent, nil
}

// CreateInteraction inserts one interaction record.
func (s *SQLiteStore) CreateInteraction(ctx context.Context, in *models.Interaction) (*models.Interaction, error) {
	metadataJSON, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, err
	}

	out := *in
	out.ID = uuid.New()
	out.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_interactions (id, agent_id, user_id, input, output, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, out.ID.String(), out.AgentID.String(), out.UserID, out.Input, out.Output, string(metadataJSON), out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInteractionsByUser retrieves interactions for a user with pagination,
// newest first.
func (s *SQLiteStore) ListInteractionsByUser(ctx context.Context, userID string, limit, offset int) ([]models.Interaction, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM agent_interactions WHERE user_id = ?
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, user_id, input, output, metadata, created_at
		FROM agent_interactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var in models.Interaction
		var id, agentID, metadataJSON string
		err := rows.Scan(&id, &agentID, &in.UserID, &in.Input, &in.Output, &metadataJSON, &in.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		if in.ID, err = uuid.Parse(id); err != nil {
			return nil, 0, err
		}
		if in.AgentID, err = uuid.Parse(agentID); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(metadataJSON), &in.Metadata); err != nil {
			return nil, 0, err
		}
		interactions = append(interactions, in)
	}

	return interactions, total, rows.Err()
}
