// Package runtime is the client for the external agent runtime that
// generates chat replies. The runtime is opaque beyond its request/response
// contract: a form-encoded message post per agent, answered with either a
// sequence of reply objects or a single bare object.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ActionNone is the default action tag when the runtime supplies none.
const ActionNone = "NONE"

// ErrTimeout is returned when the runtime does not answer within the
// configured deadline. There are no retries.
var ErrTimeout = errors.New("runtime request timed out")

// StatusError is returned on a non-2xx runtime response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("runtime API error (%d): %s", e.Status, e.Body)
}

// MessageRequest carries one chat turn to the runtime.
type MessageRequest struct {
	UserID    string
	UserName  string
	AgentName string
	Text      string
}

// ReplyItem is one reply object as produced by the runtime.
type ReplyItem struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// NormalizedReply is the canonical reply shape, regardless of which of the
// two wire shapes the runtime produced. Original holds the untouched parsed
// JSON body.
type NormalizedReply struct {
	Text     string
	Action   string
	Original json.RawMessage
}

// Client talks to the external agent runtime over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a runtime client. timeout bounds each message call; it
// defaults to 15 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

// SendMessage forwards one chat turn to the runtime endpoint for the given
// agent and normalizes the reply.
func (c *Client) SendMessage(ctx context.Context, agentID string, req MessageRequest) (*NormalizedReply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("userId", req.UserID)
	form.Set("userName", req.UserName)
	form.Set("name", req.AgentName)
	form.Set("text", req.Text)

	endpoint := fmt.Sprintf("%s/%s/message", c.baseURL, agentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	return Normalize(body)
}

// ProvisionAgent forwards an agent's config to the runtime after creation.
// The config blob is passed through unchanged.
func (c *Client) ProvisionAgent(ctx context.Context, agentID string, config any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(config)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/set", c.baseURL, agentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Normalize converts either runtime reply shape into a NormalizedReply.
// A sequence uses only the first element, with action defaulting to "NONE";
// a bare object (the legacy shape) gets action "NONE" and text defaulting
// to empty.
func Normalize(raw []byte) (*NormalizedReply, error) {
	trimmed := bytes.TrimSpace(raw)
	reply := &NormalizedReply{
		Action:   ActionNone,
		Original: json.RawMessage(append([]byte(nil), trimmed...)),
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []ReplyItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("runtime reply: %w", err)
		}
		if len(items) > 0 {
			reply.Text = items[0].Text
			if items[0].Action != "" {
				reply.Action = items[0].Action
			}
		}
		return reply, nil
	}

	var item ReplyItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("runtime reply: %w", err)
	}
	reply.Text = item.Text
	return reply, nil
}
