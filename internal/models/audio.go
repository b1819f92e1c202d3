package models

// AudioPayload is the audio handed to the transcription pipeline for one submission.
// Normalization replaces all three fields together via Replace.
type AudioPayload struct {
	Data        []byte `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Size returns the payload length in bytes.
func (p *AudioPayload) Size() int {
	return len(p.Data)
}

// Replace swaps bytes, filename and content type in one step.
func (p *AudioPayload) Replace(data []byte, filename, contentType string) {
	*p = AudioPayload{Data: data, Filename: filename, ContentType: contentType}
}

// UploadSlot is a single-use presigned upload target issued by the backend.
type UploadSlot struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"s3_key"`
}

// JobHandle identifies a started transcription job.
type JobHandle struct {
	JobName   string `json:"job_name"`
	ObjectKey string `json:"s3_key,omitempty"`
}
