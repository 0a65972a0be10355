package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Run statuses reported by the actor API.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// IsTerminalSuccess reports whether a run status means the dataset is
// fully materialized.
func IsTerminalSuccess(status string) bool {
	return status == StatusSucceeded
}

// IsTerminalFailure reports whether a run can no longer produce data.
func IsTerminalFailure(status string) bool {
	switch status {
	case StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

// Client wraps the scraping provider's actor API. Synchronous runs
// block until the provider finishes the job and return the dataset
// inline; asynchronous runs only enqueue and return a run id.
type Client struct {
	token   string
	baseURL string
	client  *resty.Client
}

type runEnvelope struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// NewClient creates a provider client. syncTimeout bounds the blocking
// run-sync call; the provider enforces its own run budget on top.
func NewClient(token, baseURL string, syncTimeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		client: resty.New().
			SetTimeout(syncTimeout).
			SetHeader("User-Agent", "DeepSocial-Backend/1.0"),
	}
}

// RunSync executes an actor and waits for its dataset. Any transport
// error, timeout or non-2xx status is returned to the caller, which is
// expected to fall back to RunAsync.
func (c *Client) RunSync(ctx context.Context, actorID string, input any) ([]json.RawMessage, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(input).
		Post(fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s", c.baseURL, actorID, c.token))

	if err != nil {
		return nil, fmt.Errorf("sync run of %s failed: %w", actorID, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("sync run of %s returned status %d: %s", actorID, resp.StatusCode(), string(resp.Body()))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to parse sync dataset for %s: %w", actorID, err)
	}

	logrus.Debugf("Sync run of %s returned %d items", actorID, len(items))
	return items, nil
}

// RunAsync enqueues an actor run and returns its run id. Failures are
// not retried; the platform simply records no job handle.
func (c *Client) RunAsync(ctx context.Context, actorID string, input any) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(input).
		Post(fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, actorID))

	if err != nil {
		return "", fmt.Errorf("async run of %s failed: %w", actorID, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("async run of %s returned status %d: %s", actorID, resp.StatusCode(), string(resp.Body()))
	}

	var envelope runEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return "", fmt.Errorf("failed to parse async run response for %s: %w", actorID, err)
	}

	if envelope.Data.ID == "" {
		return "", fmt.Errorf("async run of %s returned no run id", actorID)
	}

	return envelope.Data.ID, nil
}

// RunStatus fetches the live status of a run.
func (c *Client) RunStatus(ctx context.Context, runID string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		Get(fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, runID))

	if err != nil {
		return "", fmt.Errorf("status check for run %s failed: %w", runID, err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status check for run %s returned status %d", runID, resp.StatusCode())
	}

	var envelope runEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return "", fmt.Errorf("failed to parse status for run %s: %w", runID, err)
	}

	return envelope.Data.Status, nil
}

// DatasetItems fetches the dataset of a finished run.
func (c *Client) DatasetItems(ctx context.Context, runID string) ([]json.RawMessage, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		Get(fmt.Sprintf("%s/v2/actor-runs/%s/dataset/items", c.baseURL, runID))

	if err != nil {
		return nil, fmt.Errorf("dataset fetch for run %s failed: %w", runID, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("dataset fetch for run %s returned status %d", runID, resp.StatusCode())
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to parse dataset for run %s: %w", runID, err)
	}

	return items, nil
}
