// Package brain is the bridge to the external neural nucleus. The nucleus
// translates natural language into a candidate command; the dispatcher
// treats it as an opaque upstream producer and validates nothing but policy.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Suggester produces a candidate command for a natural-language request.
type Suggester interface {
	Suggest(ctx context.Context, input, contextHint string) (string, error)
}

// Client talks to the nucleus HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Config holds client settings.
type Config struct {
	// BaseURL is the nucleus endpoint, e.g. http://localhost:5000.
	BaseURL string
	// Timeout bounds the suggest round trip.
	Timeout time.Duration
}

// NewClient returns a nucleus client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type suggestRequest struct {
	Input   string `json:"input"`
	Context string `json:"context,omitempty"`
}

type suggestResponse struct {
	Command string `json:"command"`
	Error   string `json:"error,omitempty"`
}

// Suggest asks the nucleus for a command. An empty suggestion is an error:
// the dispatcher has nothing to classify.
func (c *Client) Suggest(ctx context.Context, input, contextHint string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("brain endpoint is not configured")
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("suggest input is empty")
	}

	body, err := json.Marshal(suggestRequest{Input: input, Context: contextHint})
	if err != nil {
		return "", fmt.Errorf("encoding suggest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggest", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building suggest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying brain: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading brain response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brain returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed suggestResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding brain response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("brain error: %s", parsed.Error)
	}
	command := strings.TrimSpace(parsed.Command)
	if command == "" {
		return "", fmt.Errorf("brain returned no command")
	}
	return command, nil
}
