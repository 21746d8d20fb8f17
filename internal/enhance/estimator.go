package enhance

import (
	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/model"
	"github.com/Alexgichamba/denoiser/internal/services"
	"github.com/Alexgichamba/denoiser/internal/stream"
)

// Options selects the inference path and the dry/wet blend for Estimate.
type Options struct {
	// Dry is the fraction of the original signal kept in the output, in
	// [0, 1]. 0 is fully denoised, 1 is fully original.
	Dry float64
	// Streaming enhances the clip frame by frame instead of in one pass.
	Streaming bool
}

// Estimate computes the denoised waveform for a noisy clip. The streaming
// path feeds the clip through a Streamer and concatenates its output; the
// Streamer applies the dry/wet blend itself. The whole-clip path runs the
// model once and blends (1-dry)*estimate + dry*noisy here.
func Estimate(m model.Model, noisy audio.Clip, opts Options) (audio.Clip, error) {
	if opts.Streaming {
		return estimateStreaming(m, noisy, opts.Dry)
	}

	estimate, err := m.Process(noisy)
	if err != nil {
		return audio.Clip{}, services.Wrap(services.ErrInference, "estimate", "process", m.Name(), err)
	}
	wet := float32(1 - opts.Dry)
	dry := float32(opts.Dry)
	for ch := range estimate.Channels {
		for i := range estimate.Channels[ch] {
			estimate.Channels[ch][i] = wet*estimate.Channels[ch][i] + dry*noisy.Channels[ch][i]
		}
	}
	return estimate, nil
}

func estimateStreaming(m model.Model, noisy audio.Clip, dry float64) (audio.Clip, error) {
	streamer := stream.New(m, dry)
	fed, err := streamer.Feed(noisy)
	if err != nil {
		return audio.Clip{}, services.Wrap(services.ErrInference, "estimate", "stream feed", m.Name(), err)
	}
	tail, err := streamer.Flush()
	if err != nil {
		return audio.Clip{}, services.Wrap(services.ErrInference, "estimate", "stream flush", m.Name(), err)
	}
	for ch := range fed.Channels {
		fed.Channels[ch] = append(fed.Channels[ch], tail.Channels[ch]...)
	}
	return fed, nil
}
