package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magicred-1/agenthub/internal/models"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func createTestProfile(t *testing.T, st DataStore, email string) *models.Profile {
	t.Helper()
	p, err := st.CreateProfile(context.Background(), "Test", email, "hash")
	require.NoError(t, err)
	return p
}

func TestSQLiteProfiles(t *testing.T) {
	st := newSQLiteTestStore(t)
	ctx := context.Background()

	p := createTestProfile(t, st, "ada@example.com")
	require.NotEqual(t, uuid.Nil, p.ID)

	byID, err := st.GetProfileByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := st.GetProfileByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, p.ID, byEmail.ID)

	missing, err := st.GetProfileByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = st.CreateProfile(ctx, "Dup", "ada@example.com", "hash")
	assert.Error(t, err, "unique email constraint")
}

func TestSQLiteAgentLifecycle(t *testing.T) {
	st := newSQLiteTestStore(t)
	ctx := context.Background()
	owner := createTestProfile(t, st, "owner@example.com")
	other := createTestProfile(t, st, "other@example.com")

	cfg := models.AgentConfig{Bio: []string{"b"}, Lore: []string{"l"}}
	cfg.ApplyDefaults()

	agent, err := st.CreateAgent(ctx, &models.Agent{
		Name:      "Turing",
		Type:      "assistant",
		Config:    cfg,
		IsActive:  true,
		CreatedBy: owner.ID,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, agent.ID)

	got, err := st.GetAgentByID(ctx, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Turing", got.Name)
	assert.Equal(t, "groq", got.Config.ModelProvider)
	assert.True(t, got.IsActive)

	// Listing is owner scoped and newest first
	time.Sleep(5 * time.Millisecond)
	_, err = st.CreateAgent(ctx, &models.Agent{Name: "Newer", Type: "assistant", Config: cfg, IsActive: true, CreatedBy: owner.ID})
	require.NoError(t, err)

	agents, err := st.ListAgentsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Newer", agents[0].Name)

	agents, err = st.ListAgentsByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, agents)

	// Update is owner scoped; a partial update leaves other fields alone
	newName := "Renamed"
	inactive := false
	updated, err := st.UpdateAgent(ctx, agent.ID, other.ID, AgentUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Nil(t, updated, "other owner must not update")

	updated, err = st.UpdateAgent(ctx, agent.ID, owner.ID, AgentUpdate{Name: &newName, IsActive: &inactive})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "assistant", updated.Type)

	// Delete is owner scoped
	deleted, err := st.DeleteAgent(ctx, agent.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = st.DeleteAgent(ctx, agent.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = st.GetAgentByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := st.CountAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteInteractions(t *testing.T) {
	st := newSQLiteTestStore(t)
	ctx := context.Background()
	owner := createTestProfile(t, st, "owner@example.com")

	cfg := models.AgentConfig{Bio: []string{"b"}, Lore: []string{"l"}}
	agent, err := st.CreateAgent(ctx, &models.Agent{Name: "A", Type: "assistant", Config: cfg, IsActive: true, CreatedBy: owner.ID})
	require.NoError(t, err)

	for i, input := range []string{"one", "two", "three"} {
		_, err := st.CreateInteraction(ctx, &models.Interaction{
			AgentID: agent.ID,
			UserID:  "u1",
			Input:   input,
			Output:  "reply " + input,
			Metadata: models.InteractionMetadata{
				UserName:  "Ada",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Action:    "NONE",
			},
		})
		require.NoError(t, err)
		if i < 2 {
			time.Sleep(5 * time.Millisecond)
		}
	}

	rows, total, err := st.ListInteractionsByUser(ctx, "u1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "three", rows[0].Input)
	assert.Equal(t, "two", rows[1].Input)
	assert.Equal(t, "Ada", rows[0].Metadata.UserName)

	rows, total, err = st.ListInteractionsByUser(ctx, "someone-else", 50, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}
