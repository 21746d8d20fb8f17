package audio

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// drainBlock is the zero-fill block size (frames) used to flush resampler
// latency after the real input has been consumed.
const drainBlock = 1024

// Resample converts the clip to the target sample rate. The output length is
// exactly round(samples * rate / c.Rate); resampler latency is flushed with
// zero input and any residual shortfall is padded with silence.
func Resample(c Clip, rate int) (Clip, error) {
	if rate <= 0 {
		return Clip{}, fmt.Errorf("resample: invalid target rate %d", rate)
	}
	if c.Rate == rate || c.SampleCount() == 0 {
		out := c.Clone()
		out.Rate = rate
		return out, nil
	}

	channels := c.ChannelCount()
	converter, err := resampling.New(&resampling.Config{
		InputRate:  float64(c.Rate),
		OutputRate: float64(rate),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Clip{}, fmt.Errorf("create resampler: %w", err)
	}

	wantFrames := int(math.Round(float64(c.SampleCount()) * float64(rate) / float64(c.Rate)))

	interleaved := interleave(c)
	processed, err := converter.Process(interleaved)
	if err != nil {
		return Clip{}, fmt.Errorf("resample: %w", err)
	}

	// Flush latency: a windowed resampler withholds the signal tail until it
	// sees more input.
	zeros := make([]float64, drainBlock*channels)
	for len(processed)/channels < wantFrames {
		more, err := converter.Process(zeros)
		if err != nil {
			return Clip{}, fmt.Errorf("resample flush: %w", err)
		}
		if len(more) == 0 {
			break
		}
		processed = append(processed, more...)
	}

	out := NewClip(rate, channels, wantFrames)
	frames := len(processed) / channels
	if frames > wantFrames {
		frames = wantFrames
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out.Channels[ch][i] = clampUnit(float32(processed[i*channels+ch]))
		}
	}
	return out, nil
}

func interleave(c Clip) []float64 {
	channels := c.ChannelCount()
	samples := c.SampleCount()
	out := make([]float64, samples*channels)
	for i := 0; i < samples; i++ {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = float64(c.Channels[ch][i])
		}
	}
	return out
}

func clampUnit(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
