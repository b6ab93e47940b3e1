package transcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MPEG-1/2 Layer III using hajimehoshi/go-mp3. The
// library always yields 16-bit little-endian stereo.
type MP3Decoder struct{}

// NewMP3Decoder creates an MP3 decoder
func NewMP3Decoder() *MP3Decoder {
	return &MP3Decoder{}
}

func (d *MP3Decoder) Name() string { return "mp3" }

func (d *MP3Decoder) Decode(data []byte) (*AudioData, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, decodeErr("mp3", "invalid MP3 stream", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, decodeErr("mp3", "reading frames", err)
	}

	const channels = 2
	n := len(raw) / 2
	n -= n % channels
	if n == 0 {
		return nil, decodeErr("mp3", "no audio samples", nil)
	}

	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768.0
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Format:     "mp3",
	}, nil
}
