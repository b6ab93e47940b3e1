package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-emotion/logging"
)

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// FFmpegDecoder decodes any container ffmpeg understands. Audio is kept at
// its native rate and channel layout; downmixing and resampling happen in
// the Normalizer so every decoder feeds the same path.
type FFmpegDecoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewFFmpegDecoder creates a new ffmpeg-backed decoder
func NewFFmpegDecoder(config *DecoderConfig) *FFmpegDecoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &FFmpegDecoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
			"decoder":   "ffmpeg",
		}),
	}
}

func (d *FFmpegDecoder) Name() string { return "ffmpeg" }

// Decode probes data with ffprobe and decodes it to interleaved float64
func (d *FFmpegDecoder) Decode(data []byte) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function":  "Decode",
		"data_size": len(data),
	})

	if len(data) == 0 {
		return nil, decodeErr("ffmpeg", "empty audio data", nil)
	}

	metadata, err := d.probeAudioMetadata(data)
	if err != nil {
		return nil, decodeErr("ffmpeg", "probe failed", err)
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
		"input_bitrate":     metadata.Bitrate,
	})

	args := []string{
		"-v", "error",
		"-i", "pipe:0",
		"-map", "0:a:0",
		"-vn",
		"-f", "f64le",
		"-ac", strconv.Itoa(metadata.Channels),
		"-ar", strconv.Itoa(metadata.SampleRate),
		"pipe:1",
	}

	start := time.Now()
	output, err := d.run(d.config.FFmpegPath, args, data)
	if err != nil {
		return nil, decodeErr("ffmpeg", "decode failed", err)
	}

	pcm := bytesToFloat64(output)
	pcm = pcm[:len(pcm)-len(pcm)%metadata.Channels]
	if len(pcm) == 0 {
		return nil, decodeErr("ffmpeg", "no audio samples decoded", nil)
	}

	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_bytes": len(output),
		"decode_time":  time.Since(start).Seconds(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: metadata.SampleRate,
		Channels:   metadata.Channels,
		Format:     metadata.Codec,
	}, nil
}

func (d *FFmpegDecoder) run(bin string, args []string, stdin []byte) ([]byte, error) {
	ctx := context.Background()
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	d.logger.Debug("Running command", logging.Fields{
		"command": fmt.Sprintf("%s %s", bin, strings.Join(args, " ")),
	})

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", bin, err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("%s failed: %w", bin, err)
	}
	return output, nil
}

// probeAudioMetadata uses ffprobe to get input audio information from bytes
func (d *FFmpegDecoder) probeAudioMetadata(data []byte) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		"pipe:0", // Input from stdin
	}

	output, err := d.run(d.config.FFprobePath, args, data)
	if err != nil {
		return nil, err
	}
	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %q", stream.SampleRate)
	}

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	bitrate, _ := strconv.Atoi(stream.BitRate)

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

func bytesToFloat64(data []byte) []float64 {
	// Trim to multiple of 8 bytes
	data = data[:len(data)-(len(data)%8)]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}

// ValidateConfig checks the timeout and that both binaries resolve
func (d *FFmpegDecoder) ValidateConfig() error {
	if d.config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", d.config.Timeout)
	}
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	if _, err := exec.LookPath(d.config.FFprobePath); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", d.config.FFprobePath, err)
	}
	return nil
}
