package backend

import (
	"context"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

type createUploadURLRequest struct {
	Action      string `json:"action"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type transcribeStartRequest struct {
	Action    string `json:"action"`
	ObjectKey string `json:"s3_key"`
}

type transcribeStartResponse struct {
	JobName string `json:"job_name"`
}

type transcribeResultRequest struct {
	Action  string `json:"action"`
	JobName string `json:"job_name"`
}

// TranscribeResult is the raw status report for a job. Status may be empty or
// a value outside the documented set.
type TranscribeResult struct {
	Status     string `json:"status"`
	JobName    string `json:"job_name,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type pollySynthesizeRequest struct {
	Action  string `json:"action"`
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
	Engine  string `json:"engine"`
	Format  string `json:"format"`
}

// CreateUploadURL asks for a presigned upload slot. Field presence is not
// checked here.
func (c *Client) CreateUploadURL(ctx context.Context, filename, contentType string) (*models.UploadSlot, error) {
	var slot models.UploadSlot
	err := c.PostJSON(ctx, createUploadURLRequest{
		Action:      ActionCreateUploadURL,
		Filename:    filename,
		ContentType: contentType,
	}, &slot)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (c *Client) StartTranscription(ctx context.Context, objectKey string) (string, error) {
	var resp transcribeStartResponse
	err := c.PostJSON(ctx, transcribeStartRequest{
		Action:    ActionTranscribeStart,
		ObjectKey: objectKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.JobName, nil
}

func (c *Client) TranscriptionResult(ctx context.Context, jobName string) (*TranscribeResult, error) {
	var resp TranscribeResult
	err := c.PostJSON(ctx, transcribeResultRequest{
		Action:  ActionTranscribeResult,
		JobName: jobName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Synthesize(ctx context.Context, req models.SynthesisRequest) (*models.SynthesisResult, error) {
	var resp models.SynthesisResult
	err := c.PostJSON(ctx, pollySynthesizeRequest{
		Action:  ActionPollySynthesize,
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Engine:  string(req.Engine),
		Format:  string(req.Format),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
