// Package relay forwards a single chat turn to the external agent runtime,
// normalizes the reply, and records the exchange as an interaction row.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/metrics"
	"github.com/Magicred-1/agenthub/internal/models"
	"github.com/Magicred-1/agenthub/internal/runtime"
	"github.com/Magicred-1/agenthub/internal/store"
)

// DefaultUserID is used when the caller supplies no user identifier.
const DefaultUserID = "user"

// Runtime is the slice of the runtime client the relay needs.
type Runtime interface {
	SendMessage(ctx context.Context, agentID string, req runtime.MessageRequest) (*runtime.NormalizedReply, error)
}

// Publisher publishes interaction events for the notification bridge.
type Publisher interface {
	PublishInteraction(ctx context.Context, event *models.InteractionEvent) error
}

// Request is one chat turn. AgentName is the display name supplied by the
// client, not the stored agent name.
type Request struct {
	UserID    string
	UserName  string
	AgentName string
	Text      string
	AgentID   string
}

// Response is the normalized relay result. Original is the untouched
// parsed runtime JSON, whichever wire shape it arrived in.
type Response struct {
	Text     string          `json:"text"`
	Action   string          `json:"action"`
	Original json.RawMessage `json:"original"`
}

// Service relays chat turns. It issues exactly one runtime call per send;
// concurrent sends from the same conversation are not mutually excluded and
// may complete out of order.
type Service struct {
	store   store.DataStore
	runtime Runtime
	events  Publisher // may be nil
	logger  zerolog.Logger
}

// NewService creates a relay service. events may be nil when no bridge is
// configured.
func NewService(st store.DataStore, rt Runtime, events Publisher, logger zerolog.Logger) *Service {
	return &Service{store: st, runtime: rt, events: events, logger: logger}
}

// Send relays one chat turn. On failure it returns a *Error carrying the
// failure kind and, where the UI needs one, a fallback text.
func (s *Service) Send(ctx context.Context, req Request) (*Response, error) {
	if req.UserID == "" {
		req.UserID = DefaultUserID
	}

	if req.Text == "" {
		metrics.RelayFailures.WithLabelValues(string(KindValidation)).Inc()
		return nil, &Error{Kind: KindValidation, Message: "No message provided"}
	}
	if req.AgentID == "" {
		metrics.RelayFailures.WithLabelValues(string(KindValidation)).Inc()
		return nil, &Error{Kind: KindValidation, Message: "Agent ID is required"}
	}

	agent, err := s.lookupAgent(ctx, req.AgentID)
	if err != nil || agent == nil {
		if err != nil {
			s.logger.Error().Err(err).Str("agent_id", req.AgentID).Msg("agent lookup failed")
		}
		metrics.RelayFailures.WithLabelValues(string(KindNotFound)).Inc()
		return nil, &Error{Kind: KindNotFound, Message: "Agent not found"}
	}

	start := time.Now()
	reply, err := s.runtime.SendMessage(ctx, agent.ID.String(), runtime.MessageRequest{
		UserID:    req.UserID,
		UserName:  req.UserName,
		AgentName: req.AgentName,
		Text:      req.Text,
	})
	metrics.RuntimeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, s.classifyRuntimeError(err, agent.ID)
	}

	metrics.MessagesRelayed.Inc()

	// Best-effort audit trail: a write failure is logged but never costs
	// the user their reply.
	s.recordInteraction(ctx, agent.ID, req, reply)

	return &Response{
		Text:     reply.Text,
		Action:   reply.Action,
		Original: reply.Original,
	}, nil
}

func (s *Service) lookupAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	id, err := uuid.Parse(agentID)
	if err != nil {
		return nil, nil
	}
	return s.store.GetAgentByID(ctx, id)
}

func (s *Service) classifyRuntimeError(err error, agentID uuid.UUID) *Error {
	var statusErr *runtime.StatusError

	switch {
	case errors.Is(err, runtime.ErrTimeout):
		s.logger.Warn().Str("agent_id", agentID.String()).Msg("runtime request timed out")
		metrics.RelayFailures.WithLabelValues(string(KindTimeout)).Inc()
		return &Error{Kind: KindTimeout, Message: "Request timed out", Text: timeoutFallback}

	case errors.As(err, &statusErr):
		s.logger.Error().Int("status", statusErr.Status).Str("agent_id", agentID.String()).Msg("runtime returned error")
		metrics.RelayFailures.WithLabelValues(string(KindUpstream)).Inc()
		return &Error{Kind: KindUpstream, Message: statusErr.Error(), Text: internalFallback}

	default:
		s.logger.Error().Err(err).Str("agent_id", agentID.String()).Msg("runtime call failed")
		metrics.RelayFailures.WithLabelValues(string(KindInternal)).Inc()
		return &Error{Kind: KindInternal, Message: err.Error(), Text: internalFallback}
	}
}

func (s *Service) recordInteraction(ctx context.Context, agentID uuid.UUID, req Request, reply *runtime.NormalizedReply) {
	interaction, err := s.store.CreateInteraction(ctx, &models.Interaction{
		AgentID: agentID,
		UserID:  req.UserID,
		Input:   req.Text,
		Output:  reply.Text,
		Metadata: models.InteractionMetadata{
			UserName:  req.UserName,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Action:    reply.Action,
		},
	})
	if err != nil {
		metrics.InteractionWriteFailures.Inc()
		s.logger.Error().Err(err).Str("agent_id", agentID.String()).Msg("failed to store interaction")
		return
	}
	metrics.InteractionsRecorded.Inc()

	if s.events == nil {
		return
	}
	event := &models.InteractionEvent{
		InteractionID: interaction.ID,
		AgentID:       agentID,
		UserID:        req.UserID,
		Output:        reply.Text,
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := s.events.PublishInteraction(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish interaction event")
	}
}
