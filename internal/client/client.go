// Package client is a typed HTTP client for the task manager API together
// with the session context that front ends hold on to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/K-nass/task-management/internal/tasks"
	"github.com/K-nass/task-management/internal/users"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Config holds connection settings for Client.
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8080/api.
	BaseURL string
	Timeout time.Duration
}

// Client talks to the REST API and carries the session cookie like a browser.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// New creates a Client. If httpClient is nil a client with its own cookie jar
// is created; a supplied client without a jar gets one.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &Client{base: base, httpClient: httpClient}, nil
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and stores the session cookie.
func (c *Client) Register(ctx context.Context, reg Registration) (*users.Profile, error) {
	var out users.Profile
	if err := c.do(ctx, http.MethodPost, "/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the session cookie.
func (c *Client) Login(ctx context.Context, creds Credentials) (*users.Profile, error) {
	var out users.Profile
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile behind the current session cookie.
func (c *Client) Me(ctx context.Context) (*users.Profile, error) {
	var out users.Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the server to expire the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ListTasks returns the caller's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	out := []tasks.Task{}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask creates a task owned by the caller.
func (c *Client) CreateTask(ctx context.Context, req tasks.CreateTaskRequest) (*tasks.Task, error) {
	var out tasks.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask changes the supplied fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id int64, req tasks.UpdateTaskRequest) (*tasks.Task, error) {
	var out tasks.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+strconv.FormatInt(id, 10), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("client: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
