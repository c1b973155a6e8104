// Package agenthub provides a client for the AgentHub API: account
// sessions, agent profiles, and the chat message relay.
package agenthub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an AgentHub API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new AgentHub client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a structured error response from the server. Text, when
// present, is a human-readable fallback suitable for display in a chat
// thread.
type APIError struct {
	Status  int
	Message string
	Text    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agenthub error %d: %s", e.Status, e.Message)
}

// doRequest performs an HTTP request with JSON encoding.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp struct {
			Error string `json:"error"`
			Text  string `json:"text"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Text = errResp.Text
		}
		return nil, apiErr
	}

	return respBody, nil
}

// Profile is a user account as returned by the API.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// SessionResponse is the response from register and login.
type SessionResponse struct {
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expires_at"`
	Profile   Profile `json:"profile"`
}

// Register creates an account and stores the session token on the client.
func (c *Client) Register(ctx context.Context, name, email, password string) (*SessionResponse, error) {
	return c.session(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionResponse, error) {
	return c.session(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) session(ctx context.Context, path string, req map[string]string) (*SessionResponse, error) {
	body, _ := json.Marshal(req)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, body, "application/json")
	if err != nil {
		return nil, err
	}

	var resp SessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	c.Token = resp.Token
	return &resp, nil
}

// Agent is an agent profile as returned by the API.
type Agent struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Config      json.RawMessage `json:"config"`
	IsActive    bool            `json:"is_active"`
}

// AgentListResponse is the response from listing agents.
type AgentListResponse struct {
	Agents []Agent `json:"agents"`
}

// ListAgents returns the authenticated user's agents, newest first.
func (c *Client) ListAgents(ctx context.Context) (*AgentListResponse, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/agents", nil, "")
	if err != nil {
		return nil, err
	}

	var resp AgentListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateAgent creates a new agent profile.
func (c *Client) CreateAgent(ctx context.Context, agent map[string]any) (*Agent, error) {
	body, _ := json.Marshal(agent)
	respBody, err := c.doRequest(ctx, http.MethodPost, "/agents", body, "application/json")
	if err != nil {
		return nil, err
	}

	var resp Agent
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MessageResponse is the normalized relay response.
type MessageResponse struct {
	Text     string          `json:"text"`
	Action   string          `json:"action"`
	Original json.RawMessage `json:"original"`
}

// SendMessage relays one chat turn to an agent.
func (c *Client) SendMessage(ctx context.Context, agentID, text, userName, agentName string) (*MessageResponse, error) {
	form := url.Values{}
	form.Set("agentId", agentID)
	form.Set("text", text)
	form.Set("userName", userName)
	form.Set("name", agentName)

	respBody, err := c.doRequest(ctx, http.MethodPost, "/message", []byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	var resp MessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthCheck is one health check result.
type HealthCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
