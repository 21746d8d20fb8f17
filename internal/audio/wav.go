package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// The in-tree codec handles canonical PCM16 WAV only. Other recognized
// extensions are the decoding collaborator's territory and fail with a clear
// unsupported-format error at decode time.

const (
	wavFormatPCM     = 1
	wavBitsPerSample = 16
)

var errNotRIFF = errors.New("not a RIFF/WAVE stream")

// EncodeWav serializes the clip as a PCM16 little-endian WAV stream.
func EncodeWav(w io.Writer, c Clip) error {
	channels := c.ChannelCount()
	if channels == 0 {
		return errors.New("encode wav: clip has no channels")
	}
	samples := c.SampleCount()

	blockAlign := channels * wavBitsPerSample / 8
	dataSize := samples * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(c.Rate))
	binary.Write(&buf, binary.LittleEndian, uint32(c.Rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(wavBitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	frame := make([]byte, blockAlign)
	for i := 0; i < samples; i++ {
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(frame[ch*2:], uint16(sampleToInt16(c.Channels[ch][i])))
		}
		buf.Write(frame)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeWav parses a PCM16 WAV stream into a clip, skipping chunks other than
// fmt and data.
func DecodeWav(r io.Reader) (Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Clip{}, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Clip{}, errNotRIFF
	}

	var (
		channels   int
		rate       int
		haveFormat bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Clip{}, errors.New("wav stream has no data chunk")
			}
			return Clip{}, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body, err := readChunk(r, size)
			if err != nil {
				return Clip{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			if len(body) < 16 {
				return Clip{}, errors.New("fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != wavFormatPCM {
				return Clip{}, fmt.Errorf("unsupported wav encoding %d (PCM only)", format)
			}
			bits := binary.LittleEndian.Uint16(body[14:16])
			if bits != wavBitsPerSample {
				return Clip{}, fmt.Errorf("unsupported wav bit depth %d (16-bit only)", bits)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			rate = int(binary.LittleEndian.Uint32(body[4:8]))
			if channels <= 0 || rate <= 0 {
				return Clip{}, errors.New("invalid fmt chunk")
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return Clip{}, errors.New("wav data chunk precedes fmt chunk")
			}
			body, err := readChunk(r, size)
			if err != nil {
				return Clip{}, fmt.Errorf("read data chunk: %w", err)
			}
			return decodePCM16(body, rate, channels), nil
		default:
			// Skip LIST, fact, and other metadata chunks. Chunk bodies are
			// word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return Clip{}, fmt.Errorf("skip %s chunk: %w", id, err)
			}
		}
	}
}

// readChunk copies a chunk body without trusting the declared size for the
// allocation. A corrupt header claiming gigabytes fails at EOF instead of
// reserving memory the stream never delivers.
func readChunk(r io.Reader, size uint32) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePCM16(data []byte, rate, channels int) Clip {
	frames := len(data) / (2 * channels)
	clip := NewClip(rate, channels, frames)
	for i := 0; i < frames; i++ {
		base := i * channels * 2
		for ch := 0; ch < channels; ch++ {
			v := int16(binary.LittleEndian.Uint16(data[base+ch*2:]))
			clip.Channels[ch][i] = float32(v) / 32768
		}
	}
	return clip
}

func sampleToInt16(s float32) int16 {
	scaled := float64(s) * 32767
	switch {
	case scaled > 32767:
		return math.MaxInt16
	case scaled < -32768:
		return math.MinInt16
	}
	return int16(math.Round(scaled))
}
