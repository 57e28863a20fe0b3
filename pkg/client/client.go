// Package client provides a small typed HTTP client for the Hireboard API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds client settings.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// Token is the bearer session token sent with authenticated calls.
	Token string
	// Timeout applies when no custom http.Client is supplied.
	Timeout time.Duration
}

// Client talks to the Hireboard HTTP API.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a client. httpClient may be nil, in which case a default client
// with the configured timeout is used.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, client: httpClient}, nil
}

// Job is the API representation of a job posting.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	MinPay         *float64  `json:"min_pay,omitempty"`
	MaxPay         *float64  `json:"max_pay,omitempty"`
	Requirements   []string  `json:"requirements"`
	Status         string    `json:"status"`
	CreatedByID    string    `json:"created_by_id"`
	CreatorName    string    `json:"creator_name"`
	CreatorEmail   string    `json:"creator_email,omitempty"`
	ApplicantCount int       `json:"applicant_count"`
	PostedAt       time.Time `json:"posted_at"`
}

// Application is the API representation of a job application.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	ApplicantName string    `json:"applicant_name"`
	Email         string    `json:"email"`
	ShortIntro    string    `json:"short_intro,omitempty"`
	ResumeURL     string    `json:"resume_url"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// APIError is the error envelope returned by the server.
type APIError struct {
	HTTPStatus int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.HTTPStatus, e.Code, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchMyJobs returns the caller's own job postings. Pass a jobID to fetch a
// single posting.
func (c *Client) FetchMyJobs(ctx context.Context, jobID string) ([]Job, error) {
	endpoint := "/api/v1/jobs/mine"
	if jobID != "" {
		endpoint += "?jobId=" + url.QueryEscape(jobID)
	}

	var jobs []Job
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FetchApplicants returns the applications for a job the caller owns.
func (c *Client) FetchApplicants(ctx context.Context, jobID string) ([]Application, error) {
	endpoint := "/api/v1/applications?jobId=" + url.QueryEscape(jobID)

	var apps []Application
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Apply submits a resume for a job. The resume is streamed as the raw request
// body; filename carries the original name, intro an optional introduction.
func (c *Client) Apply(ctx context.Context, jobID, filename, intro string, resume io.Reader) (*Application, error) {
	query := url.Values{}
	query.Set("filename", filename)
	if intro != "" {
		query.Set("intro", intro)
	}
	endpoint := "/api/v1/jobs/" + url.PathEscape(jobID) + "/apply?" + query.Encode()

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, resume)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var app Application
	if err := c.do(req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ExpireJob marks a job the caller owns as expired.
func (c *Client) ExpireJob(ctx context.Context, jobID string) (*Job, error) {
	endpoint := "/api/v1/jobs/" + url.PathEscape(jobID) + "/expire"

	var job Job
	if err := c.doJSON(ctx, http.MethodPost, endpoint, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateApplicationStatus moves an application to a new status.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID, status string) (*Application, error) {
	endpoint := "/api/v1/applications/" + url.PathEscape(applicationID) + "/status"
	payload := map[string]string{"status": status}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var app Application
	if err := c.do(req, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "UNKNOWN"
			apiErr.Message = string(raw)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
