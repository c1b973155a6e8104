package agenthub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSessionTestServer(t *testing.T, fail bool) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusRequestTimeout)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Request timed out",
				"text":  "The service is not responding.",
			})
			return
		}
		_ = r.ParseForm()
		json.NewEncoder(w).Encode(MessageResponse{
			Text:   "echo: " + r.PostFormValue("text"),
			Action: "NONE",
		})
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestSessionAppendsBothSides(t *testing.T) {
	client := newSessionTestServer(t, false)
	session := NewSession(client, "Ada")
	session.SelectAgent("a1", "Turing")

	reply, err := session.Send(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Content != "echo: hello" {
		t.Fatalf("unexpected reply %q", reply.Content)
	}

	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected user message %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "echo: hello" {
		t.Fatalf("unexpected assistant message %+v", msgs[1])
	}
	if msgs[0].ID == msgs[1].ID || msgs[0].ID == "" {
		t.Fatal("messages need distinct non-empty IDs")
	}
}

func TestSessionErrorFillsAssistantSlot(t *testing.T) {
	client := newSessionTestServer(t, true)
	session := NewSession(client, "Ada")
	session.SelectAgent("a1", "Turing")

	reply, err := session.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error")
	}
	if reply.Role != RoleAssistant {
		t.Fatalf("unexpected role %q", reply.Role)
	}
	if reply.Content != "The service is not responding." {
		t.Fatalf("expected fallback text, got %q", reply.Content)
	}

	// The turn is still fully recorded
	if len(session.Messages()) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.Messages()))
	}
}

func TestSelectAgentClearsThread(t *testing.T) {
	client := newSessionTestServer(t, false)
	session := NewSession(client, "Ada")
	session.SelectAgent("a1", "Turing")

	if _, err := session.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if len(session.Messages()) != 2 {
		t.Fatal("expected messages before switch")
	}

	session.SelectAgent("a2", "Lovelace")
	if len(session.Messages()) != 0 {
		t.Fatal("expected empty thread after agent switch")
	}
	if session.AgentID() != "a2" {
		t.Fatalf("unexpected agent %q", session.AgentID())
	}
}
