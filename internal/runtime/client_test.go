package runtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeSequence(t *testing.T) {
	reply, err := Normalize([]byte(`[{"text":"hello there","action":"WAVE"},{"text":"ignored"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "hello there" {
		t.Fatalf("expected first element text, got %q", reply.Text)
	}
	if reply.Action != "WAVE" {
		t.Fatalf("expected action WAVE, got %q", reply.Action)
	}
}

func TestNormalizeSequenceDefaultsAction(t *testing.T) {
	reply, err := Normalize([]byte(`[{"text":"hi"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if reply.Action != ActionNone {
		t.Fatalf("expected action %q, got %q", ActionNone, reply.Action)
	}
}

func TestNormalizeEmptySequence(t *testing.T) {
	reply, err := Normalize([]byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "" || reply.Action != ActionNone {
		t.Fatalf("expected empty reply with NONE action, got %q/%q", reply.Text, reply.Action)
	}
}

func TestNormalizeBareObject(t *testing.T) {
	reply, err := Normalize([]byte(`{"text":"legacy shape"}`))
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "legacy shape" {
		t.Fatalf("unexpected text %q", reply.Text)
	}
	if reply.Action != ActionNone {
		t.Fatalf("expected action %q, got %q", ActionNone, reply.Action)
	}
}

func TestNormalizeInvalidJSON(t *testing.T) {
	if _, err := Normalize([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSendMessageFormFields(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotForm = map[string]string{
			"userId":   r.PostFormValue("userId"),
			"userName": r.PostFormValue("userName"),
			"name":     r.PostFormValue("name"),
			"text":     r.PostFormValue("text"),
		}
		w.Write([]byte(`[{"text":"ack"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	reply, err := client.SendMessage(context.Background(), "agent-1", MessageRequest{
		UserID:    "u1",
		UserName:  "Ada",
		AgentName: "Turing",
		Text:      "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "ack" {
		t.Fatalf("unexpected reply text %q", reply.Text)
	}
	if gotPath != "/agent-1/message" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	want := map[string]string{"userId": "u1", "userName": "Ada", "name": "Turing", "text": "hello"}
	for k, v := range want {
		if gotForm[k] != v {
			t.Fatalf("form field %s: expected %q, got %q", k, v, gotForm[k])
		}
	}
}

func TestSendMessageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[{"text":"too late"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, err := client.SendMessage(context.Background(), "a", MessageRequest{Text: "hi"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSendMessageUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.SendMessage(context.Background(), "a", MessageRequest{Text: "hi"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", statusErr.Status)
	}
}

func TestProvisionAgent(t *testing.T) {
	var gotPath, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.ProvisionAgent(context.Background(), "agent-7", map[string]any{"bio": []string{"b"}})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/agent-7/set" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
}
