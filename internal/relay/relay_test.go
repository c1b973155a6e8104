package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magicred-1/agenthub/internal/models"
	"github.com/Magicred-1/agenthub/internal/runtime"
	"github.com/Magicred-1/agenthub/internal/store"
)

type fakeRuntime struct {
	reply *runtime.NormalizedReply
	err   error
	calls int
}

func (f *fakeRuntime) SendMessage(ctx context.Context, agentID string, req runtime.MessageRequest) (*runtime.NormalizedReply, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakePublisher struct {
	events []*models.InteractionEvent
}

func (f *fakePublisher) PublishInteraction(ctx context.Context, event *models.InteractionEvent) error {
	f.events = append(f.events, event)
	return nil
}

func seedAgent(t *testing.T, st *store.MemoryStore) *models.Agent {
	t.Helper()
	agent, err := st.CreateAgent(context.Background(), &models.Agent{
		Name:      "Turing",
		Type:      "assistant",
		CreatedBy: uuid.New(),
		IsActive:  true,
	})
	require.NoError(t, err)
	return agent
}

func TestSendRecordsInteraction(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{reply: &runtime.NormalizedReply{Text: "hello Ada", Action: "NONE"}}
	pub := &fakePublisher{}
	svc := NewService(st, rt, pub, zerolog.Nop())

	resp, err := svc.Send(context.Background(), Request{
		UserID:   "u1",
		UserName: "Ada",
		Text:     "hi",
		AgentID:  agent.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello Ada", resp.Text)
	assert.Equal(t, "NONE", resp.Action)

	rows := st.Interactions()
	require.Len(t, rows, 1)
	assert.Equal(t, agent.ID, rows[0].AgentID)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, "hi", rows[0].Input)
	assert.Equal(t, "hello Ada", rows[0].Output)
	assert.Equal(t, "Ada", rows[0].Metadata.UserName)
	assert.Equal(t, "NONE", rows[0].Metadata.Action)

	require.Len(t, pub.events, 1)
	assert.Equal(t, rows[0].ID, pub.events[0].InteractionID)
	assert.Equal(t, "u1", pub.events[0].UserID)
}

func TestSendDefaultsUserID(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{reply: &runtime.NormalizedReply{Text: "ok", Action: "NONE"}}
	svc := NewService(st, rt, nil, zerolog.Nop())

	_, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agent.ID.String()})
	require.NoError(t, err)

	rows := st.Interactions()
	require.Len(t, rows, 1)
	assert.Equal(t, DefaultUserID, rows[0].UserID)
}

func TestSendValidation(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{reply: &runtime.NormalizedReply{Text: "ok"}}
	svc := NewService(st, rt, nil, zerolog.Nop())

	_, err := svc.Send(context.Background(), Request{AgentID: agent.ID.String()})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, KindValidation, relayErr.Kind)
	assert.Equal(t, "No message provided", relayErr.Message)

	_, err = svc.Send(context.Background(), Request{Text: "hi"})
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, KindValidation, relayErr.Kind)
	assert.Equal(t, "Agent ID is required", relayErr.Message)

	assert.Zero(t, rt.calls, "runtime must not be called on validation failure")
	assert.Empty(t, st.Interactions())
}

func TestSendUnknownAgent(t *testing.T) {
	st := store.NewMemoryStore()
	rt := &fakeRuntime{reply: &runtime.NormalizedReply{Text: "ok"}}
	svc := NewService(st, rt, nil, zerolog.Nop())

	for _, agentID := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agentID})
		var relayErr *Error
		require.ErrorAs(t, err, &relayErr)
		assert.Equal(t, KindNotFound, relayErr.Kind)
		assert.Equal(t, "Agent not found", relayErr.Message)
	}
	assert.Zero(t, rt.calls)
	assert.Empty(t, st.Interactions())
}

func TestSendRuntimeTimeout(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{err: runtime.ErrTimeout}
	svc := NewService(st, rt, nil, zerolog.Nop())

	_, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agent.ID.String()})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, KindTimeout, relayErr.Kind)
	assert.Equal(t, "Request timed out", relayErr.Message)
	assert.Contains(t, relayErr.Text, "not responding")
	assert.Equal(t, 408, relayErr.HTTPStatus())
	assert.Empty(t, st.Interactions())
}

func TestSendRuntimeUpstreamError(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{err: &runtime.StatusError{Status: 502, Body: "bad gateway"}}
	svc := NewService(st, rt, nil, zerolog.Nop())

	_, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agent.ID.String()})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, KindUpstream, relayErr.Kind)
	assert.Equal(t, 500, relayErr.HTTPStatus())
	assert.NotEmpty(t, relayErr.Text)
}

func TestSendSurvivesInteractionWriteFailure(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	st.FailInteractions = true
	rt := &fakeRuntime{reply: &runtime.NormalizedReply{Text: "still here", Action: "NONE"}}
	pub := &fakePublisher{}
	svc := NewService(st, rt, pub, zerolog.Nop())

	resp, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agent.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "still here", resp.Text)
	assert.Empty(t, pub.events, "no event without a stored interaction")
}

func TestSendRuntimeGenericError(t *testing.T) {
	st := store.NewMemoryStore()
	agent := seedAgent(t, st)
	rt := &fakeRuntime{err: errors.New("connection refused")}
	svc := NewService(st, rt, nil, zerolog.Nop())

	_, err := svc.Send(context.Background(), Request{Text: "hi", AgentID: agent.ID.String()})
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, KindInternal, relayErr.Kind)
	assert.Equal(t, 500, relayErr.HTTPStatus())
}
