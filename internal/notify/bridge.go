// Package notify bridges interaction insert events to local notifications.
// Delivery is at-most-once and best-effort: no dedup, no batching, and no
// ordering guarantee relative to the relay's own persistence step.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/metrics"
	"github.com/Magicred-1/agenthub/internal/models"
)

// Notification is one local notification surfaced to the user.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Notifier delivers a local notification. Implementations must treat
// delivery as at-most-once.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// AgentLookup resolves agent display details for a notification.
type AgentLookup interface {
	GetAgentByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
}

// Subscriber produces a user's interaction events.
type Subscriber interface {
	SubscribeInteractions(ctx context.Context, userID string) <-chan models.InteractionEvent
}

// Bridge subscribes to interaction events for one user and turns each into
// a local notification titled with the agent's name.
type Bridge struct {
	events Subscriber
	agents AgentLookup
	sink   Notifier
	logger zerolog.Logger
}

// NewBridge creates a notification bridge.
func NewBridge(events Subscriber, agents AgentLookup, sink Notifier, logger zerolog.Logger) *Bridge {
	return &Bridge{events: events, agents: agents, sink: sink, logger: logger}
}

// Run consumes events for userID until ctx is cancelled. Callback handling
// is serialized by the event channel; a failed lookup or delivery drops the
// event.
func (b *Bridge) Run(ctx context.Context, userID string) {
	for event := range b.events.SubscribeInteractions(ctx, userID) {
		b.handle(ctx, event)
	}
}

func (b *Bridge) handle(ctx context.Context, event models.InteractionEvent) {
	agent, err := b.agents.GetAgentByID(ctx, event.AgentID)
	if err != nil || agent == nil {
		b.logger.Warn().Err(err).Str("agent_id", event.AgentID.String()).Msg("dropping event: agent lookup failed")
		return
	}

	n := Notification{
		Title: "New message from " + agent.Name,
		Body:  event.Output,
		Data: map[string]string{
			"agentId":   event.AgentID.String(),
			"messageId": event.InteractionID.String(),
			"avatarUrl": agent.AvatarURL,
		},
	}
	if err := b.sink.Notify(ctx, n); err != nil {
		b.logger.Warn().Err(err).Msg("notification delivery failed")
		return
	}
	metrics.NotificationsEmitted.Inc()
}

// LogNotifier writes notifications to the log. It stands in for a platform
// push delivery on targets that have none.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.logger.Info().
		Str("title", notification.Title).
		Str("body", notification.Body).
		Str("agent_id", notification.Data["agentId"]).
		Msg("notification")
	return nil
}
