package pipeline

import (
	"testing"

	"github.com/nikhilbhutani/speechbridge/internal/config"
)

type probeFunc func() bool

func (f probeFunc) Available() bool { return f() }

func TestResolveCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		features config.FeatureConfig
		probe    transcoderProbe
		want     Capabilities
	}{
		{"all enabled", config.FeatureConfig{RecordingEnabled: true}, probeFunc(func() bool { return true }),
			Capabilities{Recording: true, Transcoding: true, FileUpload: true}},
		{"no ffmpeg", config.FeatureConfig{RecordingEnabled: true}, probeFunc(func() bool { return false }),
			Capabilities{Recording: true, Transcoding: false, FileUpload: true}},
		{"no probe", config.FeatureConfig{}, nil,
			Capabilities{FileUpload: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCapabilities(tt.features, tt.probe); got != tt.want {
				t.Errorf("ResolveCapabilities() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
