package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// Transfer moves raw bytes to and from pre-authorized URLs.
type Transfer interface {
	Put(ctx context.Context, url string, data []byte, contentType string) error
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPTransfer performs plain PUT/GET requests against presigned object URLs.
// No credentials are attached: the URL itself carries the authorization.
type HTTPTransfer struct {
	httpClient *http.Client
}

func NewHTTPTransfer(cfg config.StorageConfig) *HTTPTransfer {
	timeout := cfg.TransferTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPTransfer{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Put uploads data with the given Content-Type. It is never retried.
func (t *HTTPTransfer) Put(ctx context.Context, url string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &models.HTTPError{
			Method:     http.MethodPut,
			URL:        redact(url),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (t *HTTPTransfer) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.HTTPError{
			Method:     http.MethodGet,
			URL:        redact(url),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

// redact drops the query string so presigned signatures never reach logs.
func redact(rawURL string) string {
	base, _, _ := strings.Cut(rawURL, "?")
	return base
}
