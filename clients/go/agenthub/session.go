package agenthub

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in the client-local conversation. It is never
// persisted; the durable record is the server-side interaction row.
type ChatMessage struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
	Action    string // optional, assistant messages only
}

// Session holds the in-memory conversation with the currently selected
// agent. Selecting a different agent clears the message list; it is not
// reconstructed from persisted interactions.
//
// A Session is not safe for concurrent sends; two overlapping Send calls
// race and their replies may land out of order.
type Session struct {
	client    *Client
	agentID   string
	agentName string
	userName  string
	messages  []ChatMessage
}

// NewSession creates a chat session driving the given client.
func NewSession(client *Client, userName string) *Session {
	return &Session{client: client, userName: userName}
}

// SelectAgent switches the conversation target and clears the thread.
// Reselecting the current agent also clears it.
func (s *Session) SelectAgent(agentID, agentName string) {
	s.agentID = agentID
	s.agentName = agentName
	s.messages = nil
}

// AgentID returns the currently selected agent, or empty.
func (s *Session) AgentID() string {
	return s.agentID
}

// Messages returns the conversation so far, oldest first.
func (s *Session) Messages() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send relays one chat turn and appends both sides to the thread. On
// failure the assistant slot is filled with the error's fallback text, so
// the thread never silently drops a turn; the error is still returned.
func (s *Session) Send(ctx context.Context, text string) (ChatMessage, error) {
	s.append(ChatMessage{
		ID:        ulid.Make().String(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	resp, err := s.client.SendMessage(ctx, s.agentID, text, s.userName, s.agentName)
	if err != nil {
		reply := ChatMessage{
			ID:        ulid.Make().String(),
			Role:      RoleAssistant,
			Content:   fallbackText(err),
			Timestamp: time.Now(),
		}
		s.append(reply)
		return reply, err
	}

	reply := ChatMessage{
		ID:        ulid.Make().String(),
		Role:      RoleAssistant,
		Content:   resp.Text,
		Timestamp: time.Now(),
		Action:    resp.Action,
	}
	s.append(reply)
	return reply, nil
}

func (s *Session) append(msg ChatMessage) {
	s.messages = append(s.messages, msg)
}

func fallbackText(err error) string {
	if apiErr, ok := err.(*APIError); ok && apiErr.Text != "" {
		return apiErr.Text
	}
	return "Sorry, something went wrong. Please try again."
}
