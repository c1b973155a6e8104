package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magicred-1/agenthub/internal/models"
	"github.com/Magicred-1/agenthub/internal/store"
)

type chanSubscriber struct {
	ch chan models.InteractionEvent
}

func (s *chanSubscriber) SubscribeInteractions(ctx context.Context, userID string) <-chan models.InteractionEvent {
	return s.ch
}

type captureNotifier struct {
	got chan Notification
}

func (n *captureNotifier) Notify(ctx context.Context, notification Notification) error {
	n.got <- notification
	return nil
}

func TestBridgeEmitsNotification(t *testing.T) {
	st := store.NewMemoryStore()
	agent, err := st.CreateAgent(context.Background(), &models.Agent{
		Name:      "Lovelace",
		Type:      "assistant",
		AvatarURL: "https://hub.example.com/static/avatars/o/1.jpg",
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	sub := &chanSubscriber{ch: make(chan models.InteractionEvent, 1)}
	sink := &captureNotifier{got: make(chan Notification, 1)}
	bridge := NewBridge(sub, st, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		bridge.Run(ctx, "u1")
		close(done)
	}()

	interactionID := uuid.New()
	sub.ch <- models.InteractionEvent{
		InteractionID: interactionID,
		AgentID:       agent.ID,
		UserID:        "u1",
		Output:        "hello back",
		Timestamp:     time.Now().UnixMilli(),
	}

	select {
	case n := <-sink.got:
		assert.Equal(t, "New message from Lovelace", n.Title)
		assert.Equal(t, "hello back", n.Body)
		assert.Equal(t, agent.ID.String(), n.Data["agentId"])
		assert.Equal(t, interactionID.String(), n.Data["messageId"])
		assert.Equal(t, agent.AvatarURL, n.Data["avatarUrl"])
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}

	close(sub.ch)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop after channel close")
	}
}

func TestBridgeDropsUnknownAgent(t *testing.T) {
	st := store.NewMemoryStore()
	sub := &chanSubscriber{ch: make(chan models.InteractionEvent, 2)}
	sink := &captureNotifier{got: make(chan Notification, 2)}
	bridge := NewBridge(sub, st, sink, zerolog.Nop())

	agent, err := st.CreateAgent(context.Background(), &models.Agent{
		Name:      "Known",
		Type:      "assistant",
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)

	sub.ch <- models.InteractionEvent{InteractionID: uuid.New(), AgentID: uuid.New(), UserID: "u1", Output: "dropped"}
	sub.ch <- models.InteractionEvent{InteractionID: uuid.New(), AgentID: agent.ID, UserID: "u1", Output: "kept"}
	close(sub.ch)

	bridge.Run(context.Background(), "u1")

	require.Len(t, sink.got, 1)
	n := <-sink.got
	assert.Equal(t, "kept", n.Body)
}
