// Package audio decodes the speech API's raw PCM payloads and re-encodes
// them as WAV for clients that cannot play raw samples.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"realnobroker/internal/domain"
)

var ErrMalformedPCM = errors.New("audio: malformed pcm payload")

// DecodeBase64PCM16 decodes interleaved signed 16-bit little-endian samples
// into one float slice per channel, each sample scaled into [-1, 1].
func DecodeBase64PCM16(payload string, sampleRate, channels int) (domain.Clip, error) {
	if channels <= 0 || sampleRate <= 0 {
		return domain.Clip{}, fmt.Errorf("%w: rate %d channels %d", ErrMalformedPCM, sampleRate, channels)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.Clip{}, fmt.Errorf("%w: %v", ErrMalformedPCM, err)
	}
	if len(raw) == 0 || len(raw)%2 != 0 {
		return domain.Clip{}, fmt.Errorf("%w: %d bytes", ErrMalformedPCM, len(raw))
	}
	return DecodePCM16(raw, sampleRate, channels), nil
}

// DecodePCM16 is DecodeBase64PCM16 without the base64 step. A trailing odd
// byte and any partial frame are dropped.
func DecodePCM16(raw []byte, sampleRate, channels int) domain.Clip {
	samples := len(raw) / 2
	frames := samples / channels
	out := domain.Clip{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for ch := range out.Channels {
		out.Channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			s := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			out.Channels[ch][i] = float32(s) / 32768.0
		}
	}
	return out
}

// WriteWAV writes c as a canonical 44-byte-header PCM WAV stream.
func WriteWAV(w io.Writer, c domain.Clip) error {
	channels := len(c.Channels)
	if channels == 0 {
		return fmt.Errorf("%w: no channels", ErrMalformedPCM)
	}
	frames := c.Frames()
	dataLen := frames * channels * 2

	hdr := make([]byte, 44)
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+dataLen))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(c.SampleRate*channels*2))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(hdr[34:], 16)
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataLen))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	body := make([]byte, dataLen)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			binary.LittleEndian.PutUint16(body[off:], uint16(toInt16(c.Channels[ch][i])))
		}
	}
	_, err := w.Write(body)
	return err
}

func toInt16(f float32) int16 {
	v := math.Round(float64(f) * 32768.0)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
