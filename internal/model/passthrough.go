package model

import "github.com/Alexgichamba/denoiser/internal/audio"

func init() {
	Register("passthrough16", func() Model { return passthrough{} })
}

// passthrough returns its input unchanged. Useful for wiring checks and for
// A/B listening against an enhanced run.
type passthrough struct{}

func (passthrough) Name() string    { return "passthrough16" }
func (passthrough) SampleRate() int { return 16000 }
func (passthrough) Channels() int   { return 1 }

func (p passthrough) Process(clip audio.Clip) (audio.Clip, error) {
	if err := checkShape(p, clip); err != nil {
		return audio.Clip{}, err
	}
	return clip.Clone(), nil
}
