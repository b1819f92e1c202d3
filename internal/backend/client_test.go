package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{URL: srv.URL, JSONTimeout: 5 * time.Second})
}

func TestCreateUploadURLSendsActionTaggedRequest(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"upload_url":"https://s3.example/put","s3_key":"uploads/a.wav"}`))
	})

	slot, err := client.CreateUploadURL(context.Background(), "a.wav", "audio/wav")
	if err != nil {
		t.Fatalf("CreateUploadURL() error = %v", err)
	}
	if got["action"] != ActionCreateUploadURL || got["filename"] != "a.wav" || got["content_type"] != "audio/wav" {
		t.Fatalf("request body = %v", got)
	}
	if slot.UploadURL != "https://s3.example/put" || slot.ObjectKey != "uploads/a.wav" {
		t.Fatalf("slot = %+v", slot)
	}
}

func TestPostJSONNon2xxReturnsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Forbidden"}`))
	})

	_, err := client.StartTranscription(context.Background(), "uploads/a.wav")
	var httpErr *models.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *models.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d", httpErr.StatusCode)
	}
	if httpErr.Body != `{"message":"Forbidden"}` {
		t.Fatalf("body = %q", httpErr.Body)
	}
}

func TestPostJSONMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.TranscriptionResult(context.Background(), "job-1")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) {
		t.Fatalf("parse failure should not be an HTTPError: %v", err)
	}
}

func TestTranscriptionResultDecodesOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","reason":"unsupported media"}`))
	})

	res, err := client.TranscriptionResult(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("TranscriptionResult() error = %v", err)
	}
	if res.Status != "FAILED" || res.Reason != "unsupported media" || res.Transcript != "" {
		t.Fatalf("result = %+v", res)
	}
}
