package stream

import (
	"fmt"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/model"
)

// frameSamples is the internal processing frame length. At 16 kHz this is a
// quarter second, long enough for the models' envelope analysis to settle.
const frameSamples = 4096

// Streamer runs a model over audio delivered in arbitrarily sized chunks.
// Input is buffered into fixed frames; each complete frame is enhanced and
// mixed with the dry signal as soon as it is available. Flush drains the
// final partial frame so that total output length equals total input length.
type Streamer struct {
	m       model.Model
	dry     float64
	pending [][]float32
}

// New builds a streamer for the model. dry is the fraction of the unprocessed
// signal kept in the output, in [0, 1].
func New(m model.Model, dry float64) *Streamer {
	return &Streamer{
		m:       m,
		dry:     dry,
		pending: make([][]float32, m.Channels()),
	}
}

// Feed buffers chunk and returns the enhanced audio for every complete frame
// now available. The returned clip may be empty when the buffer is still
// shorter than a frame.
func (s *Streamer) Feed(chunk audio.Clip) (audio.Clip, error) {
	if chunk.Rate != s.m.SampleRate() || chunk.ChannelCount() != s.m.Channels() {
		return audio.Clip{}, fmt.Errorf("stream: chunk shape %dHz/%dch, model expects %dHz/%dch",
			chunk.Rate, chunk.ChannelCount(), s.m.SampleRate(), s.m.Channels())
	}
	for ch := range s.pending {
		s.pending[ch] = append(s.pending[ch], chunk.Channels[ch]...)
	}

	out := audio.NewClip(s.m.SampleRate(), s.m.Channels(), 0)
	for len(s.pending[0]) >= frameSamples {
		frame := s.takeFrame(frameSamples)
		mixed, err := s.processFrame(frame, frameSamples)
		if err != nil {
			return audio.Clip{}, err
		}
		for ch := range out.Channels {
			out.Channels[ch] = append(out.Channels[ch], mixed.Channels[ch]...)
		}
	}
	return out, nil
}

// Flush enhances whatever remains in the buffer. The partial frame is
// zero-padded through the model and trimmed back to its true length. The
// streamer is empty afterwards and may be fed again.
func (s *Streamer) Flush() (audio.Clip, error) {
	remainder := len(s.pending[0])
	if remainder == 0 {
		return audio.NewClip(s.m.SampleRate(), s.m.Channels(), 0), nil
	}
	frame := s.takeFrame(remainder)
	return s.processFrame(frame, remainder)
}

// takeFrame removes the first n pending samples and returns them as a
// frameSamples-long zero-padded clip.
func (s *Streamer) takeFrame(n int) audio.Clip {
	frame := audio.NewClip(s.m.SampleRate(), s.m.Channels(), frameSamples)
	for ch := range s.pending {
		copy(frame.Channels[ch], s.pending[ch][:n])
		s.pending[ch] = s.pending[ch][n:]
	}
	return frame
}

// processFrame runs one frame through the model, applies the dry/wet mix and
// trims the result to keep samples.
func (s *Streamer) processFrame(frame audio.Clip, keep int) (audio.Clip, error) {
	wet, err := s.m.Process(frame)
	if err != nil {
		return audio.Clip{}, err
	}
	out := audio.NewClip(s.m.SampleRate(), s.m.Channels(), keep)
	for ch := range out.Channels {
		for i := 0; i < keep; i++ {
			out.Channels[ch][i] = float32(1-s.dry)*wet.Channels[ch][i] + float32(s.dry)*frame.Channels[ch][i]
		}
	}
	return out, nil
}
