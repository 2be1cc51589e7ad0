package sampleclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRejected is returned when the receiver answers an upload with a failure.
var ErrRejected = errors.New("upload rejected")

// UploadResult mirrors the receiver's POST /upload response.
type UploadResult struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message,omitempty"`
	Error        string         `json:"error,omitempty"`
	Filename     string         `json:"filename,omitempty"`
	FileSize     int64          `json:"fileSize,omitempty"`
	Statistics   map[string]int `json:"statistics,omitempty"`
	TotalSamples int            `json:"totalSamples"`
}

// Client talks to a receiver.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL, e.g. "http://localhost:3000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Upload posts payload as JSON under filename. An empty filename lets the
// receiver pick one.
func (c *Client) Upload(ctx context.Context, filename string, payload []byte) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if filename != "" {
		req.Header.Set("X-Filename", filename)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upload: read response: %w", err)
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("upload: status %d: decode response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		return &result, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, result.Error)
	}
	return &result, nil
}
