package transcode

import (
	"bytes"
	"time"

	"github.com/RyanBlaney/sonido-emotion/logging"
)

// Decoder turns an encoded audio container into PCM
type Decoder interface {
	Decode(data []byte) (*AudioData, error)
	Name() string
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// EnableFFmpeg routes containers the native decoders do not recognize
	// through ffmpeg/ffprobe.
	EnableFFmpeg bool          `json:"enable_ffmpeg" yaml:"enable_ffmpeg"`
	FFmpegPath   string        `json:"ffmpeg_path" yaml:"ffmpeg_path"`   // Path to ffmpeg binary
	FFprobePath  string        `json:"ffprobe_path" yaml:"ffprobe_path"` // Path to ffprobe binary
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`           // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		EnableFFmpeg: false,
		FFmpegPath:   "ffmpeg",  // Assume in PATH
		FFprobePath:  "ffprobe", // Assume in PATH
		Timeout:      30 * time.Second,
	}
}

// AutoDecoder sniffs the container from its leading bytes and dispatches
// to WAV or MP3, then to ffmpeg when enabled.
type AutoDecoder struct {
	wav    Decoder
	mp3    Decoder
	ffmpeg Decoder
	logger logging.Logger
}

// NewAutoDecoder creates a container-agnostic decoder. The ffmpeg fallback
// is only attached when its binaries resolve and the timeout is positive.
func NewAutoDecoder(config *DecoderConfig) *AutoDecoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}

	d := &AutoDecoder{
		wav: NewWAVDecoder(),
		mp3: NewMP3Decoder(),
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
	if config.EnableFFmpeg {
		ff := NewFFmpegDecoder(config)
		if err := ff.ValidateConfig(); err != nil {
			d.logger.Warn("FFmpeg fallback disabled", logging.Fields{
				"error": err.Error(),
			})
		} else {
			d.ffmpeg = ff
		}
	}
	return d
}

func (d *AutoDecoder) Name() string { return "auto" }

// Decode decodes data, returning a *DecodeError for empty or unrecognized
// input
func (d *AutoDecoder) Decode(data []byte) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function":  "Decode",
		"data_size": len(data),
	})

	if len(data) == 0 {
		return nil, decodeErr("", "empty audio data", nil)
	}

	var dec Decoder
	switch {
	case isWAV(data):
		dec = d.wav
	case isMP3(data):
		dec = d.mp3
	case d.ffmpeg != nil:
		dec = d.ffmpeg
	default:
		return nil, decodeErr("", "unrecognized audio container", nil)
	}

	logger.Debug("Decoding audio", logging.Fields{"decoder": dec.Name()})

	audio, err := dec.Decode(data)
	if err != nil {
		logger.Debug("Decode failed", logging.Fields{"decoder": dec.Name(), "error": err.Error()})
		return nil, err
	}

	logger.Debug("Audio decoded", logging.Fields{
		"decoder":     dec.Name(),
		"sample_rate": audio.SampleRate,
		"channels":    audio.Channels,
		"frames":      audio.Frames(),
	})
	return audio, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		(bytes.Equal(data[0:4], []byte("RIFF")) || bytes.Equal(data[0:4], []byte("RIFX"))) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")) {
		return true
	}
	// MPEG audio frame sync: 11 set bits, layer bits != 00
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 != 0
}
