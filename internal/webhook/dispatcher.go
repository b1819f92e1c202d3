package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const EventTranscriptionFinished = "transcription.finished"

// Dispatcher posts signed event payloads to caller-supplied callback URLs.
type Dispatcher struct {
	secret     string
	httpClient *http.Client
}

func NewDispatcher(secret string) *Dispatcher {
	return &Dispatcher{
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Deliver sends one POST. Any non-2xx response is an error so the caller's
// task can be retried.
func (d *Dispatcher) Deliver(ctx context.Context, callbackURL, event string, payload []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}

	deliveryID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", event)
	httpReq.Header.Set("X-Webhook-ID", deliveryID)
	if d.secret != "" {
		httpReq.Header.Set("X-Webhook-Signature", Sign(payload, d.secret))
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("webhook received non-success response", "status", resp.StatusCode, "delivery_id", deliveryID)
		return fmt.Errorf("webhook %s returned status %d", deliveryID, resp.StatusCode)
	}

	slog.Info("webhook delivered", "event", event, "delivery_id", deliveryID)
	return nil
}

// Sign returns the hex HMAC-SHA256 of payload, prefixed with "sha256=".
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}

// ValidateCallbackURL accepts absolute http and https URLs only.
func ValidateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid callback url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("callback url must be an absolute http(s) url")
	}
	return nil
}
