package transcode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes integer PCM WAV files using go-audio/wav
type WAVDecoder struct{}

// NewWAVDecoder creates a WAV decoder
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

func (d *WAVDecoder) Name() string { return "wav" }

// Decode decodes 8/16/24/32-bit integer PCM. Samples are scaled to
// [-1, 1) by 2^(bitDepth-1); 8-bit data is unsigned and re-centered.
func (d *WAVDecoder) Decode(data []byte) (*AudioData, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, decodeErr("wav", "invalid WAV file", dec.Err())
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, decodeErr("wav", fmt.Sprintf("unsupported WAV encoding %d", dec.WavAudioFormat), nil)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, decodeErr("wav", "reading PCM data", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, decodeErr("wav", "missing format chunk", nil)
	}
	if len(buf.Data) == 0 {
		return nil, decodeErr("wav", "no audio samples", nil)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, decodeErr("wav", fmt.Sprintf("unsupported bit depth %d", bitDepth), nil)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	pcm := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			v -= 128
		}
		pcm[i] = float64(v) / scale
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Format:     "wav",
	}, nil
}
