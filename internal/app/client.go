package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote job statuses shared by the generate and status endpoints.
const (
	StatusSuccess    = "success"
	StatusProcessing = "processing"
	StatusError      = "error"
)

// GenerateRequest is the body of POST generate-paper.
type GenerateRequest struct {
	Topic      string   `json:"topic"`
	Sections   []string `json:"sections"`
	WordCount  int      `json:"wordCount"`
	SourceType string   `json:"sourceType"`
	SourceURL  string   `json:"sourceUrl,omitempty"`
}

// GenerateResponse covers both the immediate and the asynchronous shapes:
// success carries Paper, processing carries DocumentID, error carries
// Message.
type GenerateResponse struct {
	Status     string `json:"status"`
	Paper      string `json:"paper,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// StatusResponse is the body of GET paper-status/{document_id}.
type StatusResponse struct {
	Status  string `json:"status"`
	Paper   string `json:"paper,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActivityRecord is one queued telemetry event.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
}

// GenerationService is the orchestrator's view of the remote generator.
type GenerationService interface {
	GeneratePaper(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	PaperStatus(ctx context.Context, documentID string) (StatusResponse, error)
}

// SessionService is the reconciler's view of the remote session mirror.
type SessionService interface {
	FetchSessions(ctx context.Context) ([]Session, error)
	PushSessions(ctx context.Context, chats []Session) error
}

// ActivityService delivers batched activity records.
type ActivityService interface {
	TrackActivity(ctx context.Context, records []ActivityRecord) error
}

// Client talks to the Anushandhan backend. It implements all three service
// interfaces above.
type Client struct {
	BaseURL string
	Auth    TokenProvider
	HTTP    *http.Client
}

func NewClient(baseURL string, auth TokenProvider) *Client {
	if auth == nil {
		auth = AnonymousProvider
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Auth:    auth,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Auth.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read " + path + " response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode " + path + " response", Err: err}
	}
	return nil
}

// decodeErrorMessage pulls a human-readable message out of an error body,
// tolerating both {"message": ...} and FastAPI-style {"detail": ...}.
func decodeErrorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Detail
}

func (c *Client) GeneratePaper(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/generate-paper", req, &out); err != nil {
		return GenerateResponse{}, err
	}
	return out, nil
}

func (c *Client) PaperStatus(ctx context.Context, documentID string) (StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, "/paper-status/"+documentID, nil, &out); err != nil {
		return StatusResponse{}, err
	}
	return out, nil
}

func (c *Client) FetchSessions(ctx context.Context) ([]Session, error) {
	var out struct {
		Chats []Session `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (c *Client) PushSessions(ctx context.Context, chats []Session) error {
	body := struct {
		Chats []Session `json:"chats"`
	}{Chats: chats}
	return c.do(ctx, http.MethodPost, "/sessions-sync", body, nil)
}

func (c *Client) TrackActivity(ctx context.Context, records []ActivityRecord) error {
	body := struct {
		Activities []ActivityRecord `json:"activities"`
	}{Activities: records}
	return c.do(ctx, http.MethodPost, "/activity-track", body, nil)
}
