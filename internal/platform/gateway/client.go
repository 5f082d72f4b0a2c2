package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scholarscan/internal/core/job"
	"scholarscan/internal/platform/metrics"

	"github.com/google/uuid"
)

var _ job.RemoteClient = (*Client)(nil)

// Client talks to the analysis gateway over JSON/HTTP.
type Client struct {
	root string
	base string
	http *http.Client
}

// New creates a client for the gateway rooted at baseURL. A zero timeout
// leaves requests without a deadline.
func New(baseURL string, timeout time.Duration) *Client {
	root := strings.TrimRight(baseURL, "/")
	return &Client{
		root: root,
		base: root + "/api",
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) StartScan(ctx context.Context, author string) (string, error) {
	var out struct {
		JobID string `json:"job_id"`
	}
	path := "/scan?author=" + url.QueryEscape(author)
	if err := c.do(ctx, http.MethodPost, path, "scan", &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("scan request failed: empty job id")
	}
	return out.JobID, nil
}

func (c *Client) GetStatus(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(jobID), "status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) GetAIStatus(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Status string `json:"ai_analyze_status"`
	}
	if err := c.do(ctx, http.MethodGet, "/ai_analyze_status/"+url.PathEscape(jobID), "ai analyze status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) GetPlagiarismStatus(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Status string `json:"plagiarism_check_status"`
	}
	if err := c.do(ctx, http.MethodGet, "/plagiarism_check_status/"+url.PathEscape(jobID), "plagiarism status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) GetJobData(ctx context.Context, jobID string) (*job.JobResult, error) {
	var out struct {
		JobData *job.JobResult `json:"job_data"`
	}
	if err := c.do(ctx, http.MethodGet, "/job_data/"+url.PathEscape(jobID), "job data", &out); err != nil {
		return nil, err
	}
	if out.JobData == nil {
		return nil, fmt.Errorf("job data request failed: empty job_data")
	}
	return out.JobData, nil
}

// Ping hits the gateway's /healthz endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.root+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway unhealthy: %s", resp.Status)
	}
	return nil
}

// do issues the request and decodes a JSON body into v. Non-2xx responses
// fail with "<name> request failed: <status>" and the body is not read.
func (c *Client) do(ctx context.Context, method, path, name string, v any) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveRemoteCall(name, started, err == nil) }()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s request failed: %s", name, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s request failed: decode response: %w", name, err)
	}
	return nil
}
