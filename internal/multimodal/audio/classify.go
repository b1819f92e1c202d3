package audio

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	TypeWAV         = "audio/wav"
	TypeMPEG        = "audio/mpeg"
	TypeOgg         = "audio/ogg"
	TypeFLAC        = "audio/flac"
	TypeAMR         = "audio/amr"
	TypeMP4         = "audio/mp4"
	TypeAAC         = "audio/aac"
	TypeOctetStream = "application/octet-stream"
)

var extensionTypes = map[string]string{
	".wav":  TypeWAV,
	".mp3":  TypeMPEG,
	".ogg":  TypeOgg,
	".opus": TypeOgg,
	".flac": TypeFLAC,
	".amr":  TypeAMR,
	".mp4":  TypeMP4,
	".m4a":  TypeMP4,
	".aac":  TypeAAC,
}

// knownTypes maps declared media types, including common browser and OS
// spellings, to their canonical form.
var knownTypes = map[string]string{
	TypeWAV:               TypeWAV,
	"audio/x-wav":         TypeWAV,
	"audio/wave":          TypeWAV,
	"audio/vnd.wave":      TypeWAV,
	TypeMPEG:              TypeMPEG,
	"audio/mp3":           TypeMPEG,
	"audio/mpeg3":         TypeMPEG,
	"audio/x-mpeg":        TypeMPEG,
	TypeOgg:               TypeOgg,
	"audio/opus":          TypeOgg,
	"audio/vorbis":        TypeOgg,
	TypeFLAC:              TypeFLAC,
	"audio/x-flac":        TypeFLAC,
	TypeAMR:               TypeAMR,
	"audio/amr-nb":        TypeAMR,
	TypeMP4:               TypeMP4,
	"audio/x-m4a":         TypeMP4,
	"audio/m4a":           TypeMP4,
	"video/mp4":           TypeMP4,
	TypeAAC:               TypeAAC,
	"audio/x-aac":         TypeAAC,
	"audio/aacp":          TypeAAC,
	"audio/x-hx-aac-adts": TypeAAC,
}

// acceptedTypes are the containers the transcription backend ingests directly.
var acceptedTypes = map[string]bool{
	TypeWAV:  true,
	TypeMPEG: true,
	TypeOgg:  true,
	TypeFLAC: true,
	TypeAMR:  true,
	TypeMP4:  true,
}

// Classify returns the canonical media type for an upload. A recognised
// declared type wins; otherwise the filename extension decides, and unknown
// extensions yield application/octet-stream.
func Classify(filename, declaredType string) string {
	if ct, ok := canonicalType(declaredType); ok {
		return ct
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	return TypeOctetStream
}

// Accepted reports whether contentType can be uploaded without normalization.
func Accepted(contentType string) bool {
	return acceptedTypes[contentType]
}

// NeedsNormalization reports whether the payload is a raw AAC elementary
// stream, judged by either its content type or its filename.
func NeedsNormalization(filename, contentType string) bool {
	if contentType == TypeAAC {
		return true
	}
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".aac")
}

// ExtensionFor returns the filename extension used for a canonical type.
func ExtensionFor(contentType string) string {
	switch contentType {
	case TypeMP4:
		return ".m4a"
	case TypeMPEG:
		return ".mp3"
	case TypeWAV:
		return ".wav"
	case TypeOgg:
		return ".ogg"
	case TypeFLAC:
		return ".flac"
	case TypeAMR:
		return ".amr"
	case TypeAAC:
		return ".aac"
	default:
		return ""
	}
}

func canonicalType(declared string) (string, bool) {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", false
	}
	ct, ok := knownTypes[strings.ToLower(mediaType)]
	return ct, ok
}
