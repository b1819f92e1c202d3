package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed backend response")

const (
	ActionCreateUploadURL  = "create_upload_url"
	ActionTranscribeStart  = "transcribe_start"
	ActionTranscribeResult = "transcribe_result"
	ActionPollySynthesize  = "polly_synthesize"
)

// Client talks to the action-tagged JSON control plane. Every call is a POST
// to the same endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(cfg config.BackendConfig) *Client {
	timeout := cfg.JSONTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PostJSON sends payload as JSON and decodes the JSON response into out.
// Non-2xx responses return *models.HTTPError with the raw body.
func (c *Client) PostJSON(ctx context.Context, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.HTTPError{
			Method:     http.MethodPost,
			URL:        c.endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
