// Package inference provides the HTTP client for the external AI inference
// service. The service owns model loading and execution; this client owns
// only the transport: JSON in, JSON out, bounded by the configured timeout.
package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
)

// errorBodyLimit caps how much of a failed response body lands in the error.
const errorBodyLimit = 512

// Service is the inference surface the pipeline consumes. Tests inject fakes.
type Service interface {
	// Summarize returns a short summary of the given plain text.
	Summarize(ctx context.Context, text string) (string, error)
	// Caption returns a one-line description of the given image bytes.
	Caption(ctx context.Context, image []byte) (string, error)
}

// Client talks to the inference service over HTTP JSON.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ Service = (*Client)(nil)

// NewClient creates a reusable client from config.
func NewClient(cfg config.InferenceConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Summarize requests a summary for converted article text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"text": text,
	}

	var resp struct {
		Summary string `json:"summary"`
	}

	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}

	return resp.Summary, nil
}

// Caption requests a description for a normalized article image.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	payload := map[string]any{
		"image": base64.StdEncoding.EncodeToString(image),
	}

	var resp struct {
		Caption string `json:"caption"`
	}

	if err := c.post(ctx, "/caption", payload, &resp); err != nil {
		return "", err
	}

	return resp.Caption, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		head, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(head))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
