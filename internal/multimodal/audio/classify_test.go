package audio

import "testing"

func TestClassifyByExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"note.wav", TypeWAV},
		{"NOTE.WAV", TypeWAV},
		{"song.mp3", TypeMPEG},
		{"voice.ogg", TypeOgg},
		{"voice.opus", TypeOgg},
		{"take.flac", TypeFLAC},
		{"call.amr", TypeAMR},
		{"clip.mp4", TypeMP4},
		{"memo.m4a", TypeMP4},
		{"raw.aac", TypeAAC},
		{"archive.tar.gz", TypeOctetStream},
		{"noextension", TypeOctetStream},
		{"", TypeOctetStream},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := Classify(tt.filename, ""); got != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestClassifyPrefersKnownDeclaredType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		want     string
	}{
		{"declared wins over extension", "memo.mp3", "audio/wav", TypeWAV},
		{"alias canonicalised", "memo", "audio/x-m4a", TypeMP4},
		{"parameters ignored", "memo", "audio/ogg; codecs=opus", TypeOgg},
		{"case insensitive", "memo", "Audio/MPEG", TypeMPEG},
		{"unknown declared falls back to extension", "memo.flac", "application/octet-stream", TypeFLAC},
		{"malformed declared falls back", "memo.amr", ";;;", TypeAMR},
		{"unknown everything", "memo.xyz", "text/plain", TypeOctetStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.filename, tt.declared); got != tt.want {
				t.Fatalf("Classify(%q, %q) = %q, want %q", tt.filename, tt.declared, got, tt.want)
			}
		})
	}
}

func TestAccepted(t *testing.T) {
	for _, ct := range []string{TypeWAV, TypeMPEG, TypeOgg, TypeFLAC, TypeAMR, TypeMP4} {
		if !Accepted(ct) {
			t.Fatalf("%s should be accepted", ct)
		}
	}
	for _, ct := range []string{TypeAAC, TypeOctetStream, ""} {
		if Accepted(ct) {
			t.Fatalf("%q should not be accepted", ct)
		}
	}
}

func TestNeedsNormalization(t *testing.T) {
	if !NeedsNormalization("memo.AAC", TypeOctetStream) {
		t.Fatal("aac extension should need normalization")
	}
	if !NeedsNormalization("memo", TypeAAC) {
		t.Fatal("aac content type should need normalization")
	}
	if NeedsNormalization("memo.m4a", TypeMP4) {
		t.Fatal("m4a should not need normalization")
	}
}
