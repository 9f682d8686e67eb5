package client

import (
	"context"       // Context for requests
	"encoding/json" // JSON response decoding
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"io"            // Bounded body reads
	"net/http"      // HTTP client
	"strings"       // URL joining
	"time"          // Client timeout
)

// ErrRequestFailed is returned when the server cannot be reached or answers with a non-2xx status
var ErrRequestFailed = errors.New("ledger server request failed")

// Client calls a running ledger server as one authenticated address
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL that sends token as its bearer credential
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Withdraw asks the server to pay the ledger balance to the owner. cheap selects the single-read variant.
func (c *Client) Withdraw(ctx context.Context, cheap bool) (string, error) {
	path := "/withdraw"
	if cheap {
		path = "/withdraw/cheap"
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.post(ctx, path, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
