// Package aiservice talks to the external document AI service: parsing
// uploaded documents, generating drafts and polling task status.
package aiservice

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

var ErrNotConfigured = errors.New("AI service URL is not configured")

type TaskState string

const (
	StatePending    TaskState = "pending"
	StateInProgress TaskState = "in_progress"
	StateCompleted  TaskState = "completed"
	StateError      TaskState = "error"
	StateNotFound   TaskState = "not_found"
)

// Terminal reports whether polling can stop.
func (s TaskState) Terminal() bool {
	return s == StateCompleted || s == StateError || s == StateNotFound
}

// APIError is a non-2xx answer. Detail is the service's own explanation.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("AI service returned status %d", e.Status)
	}
	return fmt.Sprintf("AI service returned status %d: %s", e.Status, e.Detail)
}

type ParseRequest struct {
	FilePath   string `json:"file_path"`
	BucketName string `json:"bucket_name"`
	Filename   string `json:"filename"`
	UserQuery  string `json:"user_query,omitempty"`
}

type GenerateRequest struct {
	CaseID       string `json:"case_id"`
	DocumentType string `json:"document_type"`
	Instructions string `json:"instructions,omitempty"`
	RequestedBy  string `json:"requested_by"`
}

type TaskStatus struct {
	TaskID       string          `json:"task_id"`
	Status       TaskState       `json:"status"`
	Details      string          `json:"details,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
}

type taskResponse struct {
	TaskID        string `json:"task_id"`
	InitialStatus string `json:"initial_status,omitempty"`
	Message       string `json:"message,omitempty"`
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ParseDocument queues a parsing task and returns its id.
func (c *Client) ParseDocument(ctx context.Context, req ParseRequest) (string, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodPost, "/parse-document/", nil, req, &out, http.StatusOK, http.StatusAccepted, http.StatusCreated); err != nil {
		return "", err
	}
	if out.TaskID == "" {
		return "", errors.New("AI service response has no task_id")
	}
	return out.TaskID, nil
}

func (c *Client) GenerateDocument(ctx context.Context, req GenerateRequest) (string, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodPost, "/generate-document/", nil, req, &out, http.StatusAccepted); err != nil {
		return "", err
	}
	if out.TaskID == "" {
		return "", errors.New("AI service response has no task_id")
	}
	return out.TaskID, nil
}

// AgentStatus maps a 404 to a not_found status rather than an error.
func (c *Client) AgentStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	var out TaskStatus
	err := c.do(ctx, http.MethodGet, "/agent-status/", url.Values{"task_id": {taskID}}, nil, &out, http.StatusOK)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return &TaskStatus{TaskID: taskID, Status: StateNotFound, ErrorMessage: apiErr.Detail}, nil
	}
	if err != nil {
		return nil, err
	}
	if out.TaskID == "" {
		out.TaskID = taskID
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, okStatus ...int) error {
	if c.BaseURL == "" {
		return ErrNotConfigured
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("AI service request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read AI service response: %w", err)
	}

	if !statusIn(resp.StatusCode, okStatus) {
		return &APIError{Status: resp.StatusCode, Detail: extractDetail(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode AI service response: %w", err)
		}
	}
	return nil
}

func statusIn(status int, allowed []int) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// extractDetail reads "detail" as a string or as {"message": ...}, then
// falls back to "message" and finally to the raw body.
func extractDetail(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Detail, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		return string(body.Detail)
	}
	if body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
