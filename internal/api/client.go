package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

const DefaultTimeout = 30 * time.Second

// Error is a failed API call, carrying the server's `{message}` body so it
// can be surfaced to the user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (status %d)", e.StatusCode)
}

// Client talks to the Origins HMS REST API.
//
// The client performs no retries: the lifecycle workflow depends on knowing
// that at most one CreateComment and one UpdateStatus were attempted per
// user action. Timeouts belong to HTTPClient.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) request(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &msg); err == nil && strings.TrimSpace(msg.Message) != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}
	return respBody, nil
}

// GetTask fetches a task with its full detail payload, comments included.
func (c *Client) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	resp, err := c.request(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var t model.Task
	if err := json.Unmarshal(resp, &t); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &t, nil
}

// ListFilters narrow a task listing. A nil Status means "any".
type ListFilters struct {
	Status *model.Status
	Search string
}

func (f ListFilters) query(page, limit int) url.Values {
	params := url.Values{}
	if f.Status != nil {
		params.Set("status", string(*f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		params.Set("search", s)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params
}

func (c *Client) ListTasks(ctx context.Context, f ListFilters, page, limit int) ([]model.Task, model.Page, error) {
	resp, err := c.request(ctx, http.MethodGet, "/tasks?"+f.query(page, limit).Encode(), nil)
	if err != nil {
		return nil, model.Page{}, err
	}
	var out struct {
		Tasks      []model.Task `json:"tasks"`
		Pagination model.Page   `json:"pagination"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, model.Page{}, fmt.Errorf("parse task list: %w", err)
	}
	return out.Tasks, out.Pagination, nil
}

// CreateComment appends a comment to a task. The server rejects empty text
// and unknown tasks; callers are expected to validate text client-side first.
func (c *Client) CreateComment(ctx context.Context, taskID, text string) (*model.Comment, error) {
	body := map[string]string{"text": text}
	resp, err := c.request(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/comments", body)
	if err != nil {
		return nil, err
	}
	var cm model.Comment
	if err := json.Unmarshal(resp, &cm); err != nil {
		return nil, fmt.Errorf("parse comment: %w", err)
	}
	return &cm, nil
}

func (c *Client) UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	body := map[string]string{"status": string(status)}
	resp, err := c.request(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(taskID)+"/status", body)
	if err != nil {
		return nil, err
	}
	var t model.Task
	if err := json.Unmarshal(resp, &t); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &t, nil
}

// UpdateTask patches a subset of task fields and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, fields map[string]any) (*model.Task, error) {
	resp, err := c.request(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(taskID), fields)
	if err != nil {
		return nil, err
	}
	var t model.Task
	if err := json.Unmarshal(resp, &t); err != nil {
		return nil, fmt.Errorf("parse task: %w", err)
	}
	return &t, nil
}

// UpdateAlert persists a task's alert configuration through UpdateTask.
func (c *Client) UpdateAlert(ctx context.Context, taskID string, alert model.AlertSetting) (*model.Task, error) {
	fields := map[string]any{
		"alertEnabled": alert.Enabled,
		"alertDate":    alert.Date,
	}
	return c.UpdateTask(ctx, taskID, fields)
}
