package enhance_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/enhance"
	"github.com/Alexgichamba/denoiser/internal/services"
)

// halver scales every sample by 0.5, making the dry/wet blend observable.
type halver struct{}

func (halver) Name() string    { return "halver" }
func (halver) SampleRate() int { return 16000 }
func (halver) Channels() int   { return 1 }

func (halver) Process(clip audio.Clip) (audio.Clip, error) {
	out := clip.Clone()
	for ch := range out.Channels {
		for i := range out.Channels[ch] {
			out.Channels[ch][i] *= 0.5
		}
	}
	return out, nil
}

// faulty always fails inference.
type faulty struct{}

func (faulty) Name() string    { return "faulty" }
func (faulty) SampleRate() int { return 16000 }
func (faulty) Channels() int   { return 1 }

func (faulty) Process(audio.Clip) (audio.Clip, error) {
	return audio.Clip{}, errors.New("shape mismatch")
}

func constClip(samples int, value float32) audio.Clip {
	clip := audio.NewClip(16000, 1, samples)
	for i := range clip.Channels[0] {
		clip.Channels[0][i] = value
	}
	return clip
}

func TestEstimateDryBlend(t *testing.T) {
	noisy := constClip(100, 0.8)

	cases := []struct {
		name string
		dry  float64
		want float32
	}{
		{"fully denoised", 0, 0.4},
		{"fully original", 1, 0.8},
		{"half mix", 0.5, 0.6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := enhance.Estimate(halver{}, noisy, enhance.Options{Dry: tc.dry})
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}
			for i, got := range out.Channels[0] {
				if math.Abs(float64(got-tc.want)) > 1e-6 {
					t.Fatalf("sample %d: got %v want %v", i, got, tc.want)
				}
			}
		})
	}
}

func TestEstimateStreamingPreservesLength(t *testing.T) {
	noisy := constClip(10000, 0.8)
	out, err := enhance.Estimate(halver{}, noisy, enhance.Options{Dry: 0.5, Streaming: true})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if out.SampleCount() != noisy.SampleCount() {
		t.Fatalf("length: got %d want %d", out.SampleCount(), noisy.SampleCount())
	}
	// The streamer applies the same blend internally.
	for i, got := range out.Channels[0] {
		if math.Abs(float64(got)-0.6) > 1e-6 {
			t.Fatalf("sample %d: got %v want 0.6", i, got)
		}
	}
}

func TestEstimateWrapsInferenceFailure(t *testing.T) {
	_, err := enhance.Estimate(faulty{}, constClip(10, 0.1), enhance.Options{})
	if err == nil {
		t.Fatal("expected inference failure")
	}
	if !errors.Is(err, services.ErrInference) {
		t.Fatalf("expected inference error class, got %v", err)
	}

	_, err = enhance.Estimate(faulty{}, constClip(10, 0.1), enhance.Options{Streaming: true})
	if err == nil {
		t.Fatal("expected streaming inference failure")
	}
	if !errors.Is(err, services.ErrInference) {
		t.Fatalf("expected inference error class, got %v", err)
	}
}
