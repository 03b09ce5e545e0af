package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"taskroom-cli/internal/model"
)

// Client talks to the task API. Every request carries the bearer token; every
// response has its status inspected and surfaced as a StatusError instead of
// being rendered as silently-stale state.
type Client struct {
	BaseURL string
	Token   string

	// HTTPClient defaults to http.DefaultClient when nil.
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), Token: token}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, msg)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep a short body excerpt for the error message; API errors are
		// small JSON payloads, not pages.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListTasks fetches the task collection filtered by search. An empty term
// matches all tasks. No pagination.
func (c *Client) ListTasks(ctx context.Context, search string) ([]model.Task, error) {
	path := "/api/tasks"
	if s := strings.TrimSpace(search); s != "" {
		path += "?search=" + url.QueryEscape(s)
	}
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate,omitempty"`
}

// CreateTask sends title/description/dueDate verbatim; the server owns
// validation beyond the non-empty title the CLI form enforces.
func (c *Client) CreateTask(ctx context.Context, title, description string, due *model.Date) (model.Task, error) {
	req := createTaskRequest{Title: title, Description: description}
	if due != nil && !due.IsZero() {
		req.DueDate = due.String()
	}
	var t model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// UpdateTaskFields carries the editable task fields. Nil pointers leave the
// field untouched server-side.
type UpdateTaskFields struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *model.Date   `json:"dueDate,omitempty"`
	Status      *model.Status `json:"status,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id int64, fields UpdateTaskFields) (model.Task, error) {
	var t model.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), fields, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

// CompleteTask marks the task done via the partial-update endpoint.
func (c *Client) CompleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/complete", id), nil, nil)
}

// Login exchanges username/password for a bearer token. Token issuance
// mechanics live entirely server-side; the client only stores the opaque
// result.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", model.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", fmt.Errorf("login: server returned no token")
	}
	return resp.Token, nil
}
