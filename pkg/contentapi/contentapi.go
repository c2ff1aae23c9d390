package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client handles all communication with the content API that owns post
// records. Callers pass the user's bearer token so the API sees the same
// identity the auth provider issued.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create content API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content API unavailable: %w", err)
	}
	return resp, nil
}

// apiError reads the error body the content API returns, preferring its
// "detail" field so the user sees the upstream message.
func apiError(action string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(bodyBytes, &payload); err == nil && payload.Detail != "" {
		return fmt.Errorf("%s: %s", action, payload.Detail)
	}
	return fmt.Errorf("%s: status %d: %s", action, resp.StatusCode, string(bodyBytes))
}
