// Package client is a small SDK for the search backend: a typed HTTP
// client plus a poller that drives a search from submission to merged
// results.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the search backend's JSON API.
type Client struct {
	http *resty.Client
}

// New creates a client for the backend at baseURL authenticating with
// the given bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(token).
			SetTimeout(5 * time.Minute),
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// StartResponse is the backend's answer to a search submission. Sync
// platform data comes back inline; pending platforms only carry run
// ids.
type StartResponse struct {
	SearchID         string  `json:"searchId"`
	Status           string  `json:"status"`
	TwitterRunID     *string `json:"twitterRunId"`
	RedditRunID      *string `json:"redditRunId"`
	TikTokRunID      *string `json:"tiktokRunId"`
	FacebookRunID    *string `json:"facebookRunId"`
	InstagramRunID   *string `json:"instagramRunId"`
	YouTubeRunID     *string `json:"youtubeRunId"`
	TruthSocialRunID *string `json:"truthSocialRunId"`

	TwitterData     []json.RawMessage `json:"twitterData"`
	RedditData      []json.RawMessage `json:"redditData"`
	InstagramData   []json.RawMessage `json:"instagramData"`
	TruthSocialData []json.RawMessage `json:"truthSocialData"`

	SyncResults map[string][]json.RawMessage `json:"syncResults"`
}

// SyncData collects the platforms that returned data synchronously.
func (r *StartResponse) SyncData() map[string][]json.RawMessage {
	data := make(map[string][]json.RawMessage)
	if len(r.TwitterData) > 0 {
		data["twitter"] = r.TwitterData
	}
	if len(r.RedditData) > 0 {
		data["reddit"] = r.RedditData
	}
	if len(r.InstagramData) > 0 {
		data["instagram"] = r.InstagramData
	}
	if len(r.TruthSocialData) > 0 {
		data["truthSocial"] = r.TruthSocialData
	}
	for platform, items := range r.SyncResults {
		if len(items) > 0 {
			data[platform] = items
		}
	}
	return data
}

// Progress mirrors the backend's completion fraction.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// StatusResponse is one status poll's answer.
type StatusResponse struct {
	SearchID  string            `json:"searchId"`
	Status    string            `json:"status"`
	Platforms map[string]string `json:"platforms"`
	Progress  Progress          `json:"progress"`
}

// ResultsResponse is the assembled per-platform result view.
type ResultsResponse struct {
	SearchID string                       `json:"searchId"`
	Keyword  string                       `json:"keyword"`
	Results  map[string][]json.RawMessage `json:"results"`
}

type startRequest struct {
	Keyword  string `json:"keyword"`
	MaxItems int    `json:"maxItems,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// StartSearch submits a keyword search.
func (c *Client) StartSearch(ctx context.Context, keyword string, maxItems int) (*StartResponse, error) {
	var out StartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(startRequest{Keyword: keyword, MaxItems: maxItems}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("failed to start search: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

// Status fetches the aggregate status of a search.
func (c *Client) Status(ctx context.Context, searchID string) (*StatusResponse, error) {
	var out StatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(fmt.Sprintf("/search/%s/status", searchID))
	if err != nil {
		return nil, fmt.Errorf("failed to check status: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

// Results fetches the assembled results of a search.
func (c *Client) Results(ctx context.Context, searchID string) (*ResultsResponse, error) {
	var out ResultsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(fmt.Sprintf("/search/%s/results", searchID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

func apiError(resp *resty.Response) error {
	message := "unexpected response"
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		message = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: message}
}
