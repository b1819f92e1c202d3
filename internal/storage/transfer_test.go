package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

func TestPutSendsBytesAndContentType(t *testing.T) {
	var gotBody string
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := NewHTTPTransfer(config.StorageConfig{TransferTimeout: 5 * time.Second})
	if err := tr.Put(context.Background(), srv.URL+"/obj?X-Amz-Signature=abc", []byte("RIFF"), "audio/wav"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if gotBody != "RIFF" || gotType != "audio/wav" {
		t.Fatalf("body=%q type=%q", gotBody, gotType)
	}
}

func TestPutNon2xxRedactsSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("SignatureDoesNotMatch"))
	}))
	defer srv.Close()

	tr := NewHTTPTransfer(config.StorageConfig{TransferTimeout: 5 * time.Second})
	err := tr.Put(context.Background(), srv.URL+"/obj?X-Amz-Signature=secret", []byte("x"), "audio/wav")

	var httpErr *models.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *models.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusForbidden || httpErr.Body != "SignatureDoesNotMatch" {
		t.Fatalf("http error = %+v", httpErr)
	}
	if strings.Contains(httpErr.Error(), "secret") {
		t.Fatalf("signature leaked into error: %v", httpErr)
	}
}

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "binary/octet-stream")
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	tr := NewHTTPTransfer(config.StorageConfig{})
	data, err := tr.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "ID3audio" {
		t.Fatalf("data = %q", data)
	}
}

func TestGetNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tr := NewHTTPTransfer(config.StorageConfig{})
	_, err := tr.Get(context.Background(), srv.URL)
	var httpErr *models.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("error = %v", err)
	}
}
