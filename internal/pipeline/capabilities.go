package pipeline

import "github.com/nikhilbhutani/speechbridge/internal/config"

// Capabilities are optional features resolved once at startup. They shape
// what a display layer offers; pipeline behavior never depends on them.
type Capabilities struct {
	Recording   bool `json:"recording"`
	Transcoding bool `json:"transcoding"`
	FileUpload  bool `json:"file_upload"`
}

type transcoderProbe interface {
	Available() bool
}

func ResolveCapabilities(features config.FeatureConfig, probe transcoderProbe) Capabilities {
	return Capabilities{
		Recording:   features.RecordingEnabled,
		Transcoding: probe != nil && probe.Available(),
		FileUpload:  true,
	}
}
