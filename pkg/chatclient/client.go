// Package chatclient is a Go client for the content-assistant API. It also
// implements the chat orchestration flow the web UI follows: optimistic
// message insertion, sequential persist/generate calls, and rollback of
// unconfirmed messages on failure.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Conversation is a conversation record as returned by the API.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a message record as returned by the API.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	ShowPlatforms  bool      `json:"show_platforms"`
	RealAIResponse bool      `json:"real_ai_response"`
	CreatedAt      time.Time `json:"created_at"`
}

// AppendMessageRequest is the body for appending a message.
type AppendMessageRequest struct {
	Role           string `json:"role"`
	Content        string `json:"content"`
	ShowPlatforms  bool   `json:"show_platforms"`
	RealAIResponse bool   `json:"real_ai_response"`
}

// UpdateConversationRequest is the body for updating a conversation.
type UpdateConversationRequest struct {
	Title    *string `json:"title,omitempty"`
	Platform *string `json:"platform,omitempty"`
}

// GenerateRequest is the body for the generation endpoint.
type GenerateRequest struct {
	Prompt         string    `json:"prompt"`
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client calls the content-assistant API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the given base URL using the given session token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateConversation creates an empty conversation.
func (c *Client) CreateConversation(ctx context.Context) (*Conversation, error) {
	var conv Conversation
	if err := c.do(ctx, http.MethodPost, "/api/v1/conversations", nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the caller's conversations, newest activity first.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var convs []Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// GetConversation fetches one conversation.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations/"+id, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateConversation updates a conversation's mutable fields.
func (c *Client) UpdateConversation(ctx context.Context, id string, req UpdateConversationRequest) (*Conversation, error) {
	var conv Conversation
	if err := c.do(ctx, http.MethodPatch, "/api/v1/conversations/"+id, req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/conversations/"+id, nil, nil)
}

// ListMessages returns a conversation's messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, "/api/v1/conversations/"+conversationID+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// AppendMessage appends a message to a conversation.
func (c *Client) AppendMessage(ctx context.Context, conversationID string, req AppendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/api/v1/conversations/"+conversationID+"/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Generate asks the server for an assistant reply. The reply is not persisted
// server-side; append it with AppendMessage.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var resp generateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}
