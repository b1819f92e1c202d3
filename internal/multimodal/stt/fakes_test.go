package stt

import (
	"context"
	"sync"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// fakeBackend scripts control-plane responses.
type fakeBackend struct {
	mu       sync.Mutex
	slot     *models.UploadSlot
	slotErr  error
	jobName  string
	startErr error
	statuses []statusReply
	queries  int
	calls    []string
}

type statusReply struct {
	result *backend.TranscribeResult
	err    error
}

func (f *fakeBackend) CreateUploadURL(ctx context.Context, filename, contentType string) (*models.UploadSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "presign:"+filename+":"+contentType)
	if f.slotErr != nil {
		return nil, f.slotErr
	}
	return f.slot, nil
}

func (f *fakeBackend) StartTranscription(ctx context.Context, objectKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start:"+objectKey)
	return f.jobName, f.startErr
}

func (f *fakeBackend) TranscriptionResult(ctx context.Context, jobName string) (*backend.TranscribeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.queries
	f.queries++
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	reply := f.statuses[idx]
	return reply.result, reply.err
}

func (f *fakeBackend) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

type fakeUploader struct {
	url         string
	data        []byte
	contentType string
	err         error
	calls       int
}

func (u *fakeUploader) Put(ctx context.Context, url string, data []byte, contentType string) error {
	u.calls++
	u.url = url
	u.data = data
	u.contentType = contentType
	return u.err
}

// fakeClock advances only when the poller waits.
type fakeClock struct {
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestPoller(api StatusQuerier, clock *fakeClock) *Poller {
	p := NewPoller(api)
	p.now = clock.Now
	p.wait = clock.Wait
	return p
}

func running() statusReply {
	return statusReply{result: &backend.TranscribeResult{Status: "RUNNING"}}
}
