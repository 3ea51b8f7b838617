package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Answerer is the widget's view of the remote answering service.
type Answerer interface {
	// Ask submits the conversation so far and returns the service's reply.
	Ask(ctx context.Context, req AskRequest) (string, error)

	// DeleteSession issues the service's delete command for a session.
	DeleteSession(ctx context.Context, sessionID string) error
}

// TurnPayload is one conversation turn in the wire format the answering
// service expects.
type TurnPayload struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type AskRequest struct {
	Messages  []TurnPayload `json:"messages"`
	Context   string        `json:"context,omitempty"`
	SessionID string        `json:"sessionId"`
	UserID    string        `json:"userId"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// deleteRequest multiplexes the delete command over the same endpoint.
type deleteRequest struct {
	Action    string `json:"action"`
	SessionID string `json:"sessionId"`
}

const actionDeleteSession = "delete_session"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8090"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *Client) Ask(ctx context.Context, req AskRequest) (string, error) {
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to make assist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assist API returned status %d: %s", resp.StatusCode, string(body))
	}

	var answer askResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("failed to decode assist response: %w", err)
	}

	if answer.Answer == "" {
		return "", fmt.Errorf("assist API returned an empty answer")
	}

	return answer.Answer, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	resp, err := c.doRequest(ctx, deleteRequest{
		Action:    actionDeleteSession,
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to make delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete command returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/assist", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}
