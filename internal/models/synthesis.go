package models

type Engine string

const (
	EngineNeural   Engine = "neural"
	EngineStandard Engine = "standard"
)

type AudioFormat string

const (
	FormatMP3       AudioFormat = "mp3"
	FormatOggVorbis AudioFormat = "ogg_vorbis"
)

// ContentType maps the requested output format to the media type served to the caller.
func (f AudioFormat) ContentType() string {
	if f == FormatOggVorbis {
		return "audio/ogg"
	}
	return "audio/mpeg"
}

// Voices lists the voice ids the synthesis service accepts, in display order.
var Voices = []string{"Lucia", "Conchita", "Mia", "Miguel", "Penelope"}

var Engines = []Engine{EngineNeural, EngineStandard}

var Formats = []AudioFormat{FormatMP3, FormatOggVorbis}

const (
	DefaultVoice  = "Lucia"
	DefaultEngine = EngineNeural
	DefaultFormat = FormatMP3
)

type SynthesisRequest struct {
	Text    string      `json:"text"`
	VoiceID string      `json:"voice_id"`
	Engine  Engine      `json:"engine"`
	Format  AudioFormat `json:"format"`
}

type SynthesisResult struct {
	AudioURL string `json:"audio_url,omitempty"`
}

// SynthesizedAudio is the fetched audio for a successful synthesis request.
type SynthesizedAudio struct {
	Audio       []byte
	ContentType string
	AudioURL    string
}
