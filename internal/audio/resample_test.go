package audio_test

import (
	"math"
	"testing"

	"github.com/Alexgichamba/denoiser/internal/audio"
)

func TestResamplePassthrough(t *testing.T) {
	in := sineClip(16000, 1, 160, 0.5)
	out, err := audio.Resample(in, 16000)
	if err != nil {
		t.Fatalf("Resample returned error: %v", err)
	}
	if out.Rate != 16000 || out.SampleCount() != in.SampleCount() {
		t.Fatalf("passthrough changed shape: rate=%d samples=%d", out.Rate, out.SampleCount())
	}
	out.Channels[0][0] = 1
	if in.Channels[0][0] == 1 {
		t.Fatal("passthrough shares buffers with the input")
	}
}

func TestResampleExactLength(t *testing.T) {
	cases := []struct {
		name    string
		inRate  int
		outRate int
		samples int
	}{
		{"upsample 2x", 8000, 16000, 800},
		{"downsample 2x", 32000, 16000, 3200},
		{"fractional 44k to 16k", 44100, 16000, 4410},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sineClip(tc.inRate, 1, tc.samples, 0.5)
			out, err := audio.Resample(in, tc.outRate)
			if err != nil {
				t.Fatalf("Resample returned error: %v", err)
			}
			want := int(math.Round(float64(tc.samples) * float64(tc.outRate) / float64(tc.inRate)))
			if out.SampleCount() != want {
				t.Fatalf("length: got %d want %d", out.SampleCount(), want)
			}
			if out.Rate != tc.outRate {
				t.Fatalf("rate: got %d want %d", out.Rate, tc.outRate)
			}
		})
	}
}

func TestResamplePreservesSignalEnergy(t *testing.T) {
	in := sineClip(8000, 1, 8000, 0.5)
	out, err := audio.Resample(in, 16000)
	if err != nil {
		t.Fatalf("Resample returned error: %v", err)
	}

	// Compare RMS over the middle of the signal, away from filter edges.
	rms := func(c audio.Clip) float64 {
		n := c.SampleCount()
		var sum float64
		for i := n / 4; i < 3*n/4; i++ {
			v := float64(c.Channels[0][i])
			sum += v * v
		}
		return math.Sqrt(sum / float64(n/2))
	}
	inRMS, outRMS := rms(in), rms(out)
	if math.Abs(inRMS-outRMS) > 0.05 {
		t.Fatalf("RMS drifted: in=%v out=%v", inRMS, outRMS)
	}
}

func TestResampleRejectsInvalidRate(t *testing.T) {
	if _, err := audio.Resample(sineClip(16000, 1, 16, 0.5), 0); err == nil {
		t.Fatal("expected error for zero target rate")
	}
}
